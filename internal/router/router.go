package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notebridge/internal/config"
	"notebridge/internal/handler"
	"notebridge/internal/middleware"
	"notebridge/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	lessonHandler *handler.LessonHandler,
	chatHandler *handler.ChatHandler,
	messageHandler *handler.MessageHandler,
	fileHandler *handler.FileHandler,
	wsHandler http.HandlerFunc,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", wsHandler)

	r.Route("/auth", func(auth chi.Router) {
		auth.Use(middleware.Timeout(cfg.RequestTimeout))
		auth.Post("/login", authHandler.Login)
		auth.Post("/register", authHandler.Register)
		auth.Post("/refresh", authHandler.Refresh)
	})

	r.Route("/user", func(user chi.Router) {
		user.Use(middleware.Timeout(cfg.RequestTimeout))
		user.Use(authMiddleware.RequireAuth)
		user.Get("/get-profile", userHandler.Profile)
		user.Put("/update/{userId}", userHandler.Update)
		user.Delete("/deleteUser/{userId}", userHandler.Delete)
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(middleware.Timeout(cfg.RequestTimeout))
		admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin))
		admin.Get("/get-all-users", userHandler.List)
		admin.Get("/get-user/{userId}", userHandler.Get)

		admin.Route("/lesson", func(lesson chi.Router) {
			lesson.Get("/all", lessonHandler.ListAll)
			lesson.Post("/create", lessonHandler.CreateForAdmin)
			lesson.Put("/update/{lessonId}", lessonHandler.UpdateForAdmin)
			lesson.Put("/cancel/{lessonId}", lessonHandler.CancelForAdmin)
			lesson.Put("/reactivate/{lessonId}", lessonHandler.ReactivateForAdmin)
			lesson.Delete("/{lessonId}", lessonHandler.Delete)
		})
	})

	r.Route("/lesson", func(lesson chi.Router) {
		lesson.Use(middleware.Timeout(cfg.RequestTimeout))
		// Browsing lessons is public, mutating them is not.
		lesson.Get("/", lessonHandler.List)
		lesson.Get("/{lessonId}", lessonHandler.Get)
		lesson.Get("/teacher/{teacherId}", lessonHandler.ListByTeacher)
		lesson.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleTeacher)).Post("/create", lessonHandler.Create)
		lesson.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleTeacher)).Put("/update/{lessonId}", lessonHandler.Update)
		lesson.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleTeacher)).Put("/cancel/{lessonId}", lessonHandler.Cancel)
		lesson.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleTeacher)).Put("/reactivate/{lessonId}", lessonHandler.Reactivate)
	})

	r.Route("/chat", func(chat chi.Router) {
		chat.Use(middleware.Timeout(cfg.RequestTimeout))
		chat.Use(authMiddleware.RequireAuth)
		chat.Post("/create", chatHandler.Create)
		chat.Get("/", chatHandler.ListMine)
		chat.Get("/{chatId}", chatHandler.Get)
		chat.Put("/{chatId}/subject", chatHandler.UpdateSubject)
	})

	r.Route("/message", func(message chi.Router) {
		message.Use(middleware.Timeout(cfg.RequestTimeout))
		message.Use(authMiddleware.RequireAuth)
		message.Post("/send", messageHandler.Send)
		message.Get("/chat/{chatId}", messageHandler.ListByChat)
		message.Get("/chat/{chatId}/recent", messageHandler.Recent)
		message.Put("/chat/{chatId}/read", messageHandler.MarkRead)
		message.Get("/chat/{chatId}/unread-count", messageHandler.UnreadCount)
		message.Get("/unread-count", messageHandler.TotalUnread)
	})

	r.Route("/file", func(file chi.Router) {
		file.With(authMiddleware.RequireAuth).Post("/upload/profile_pic/{userId}", fileHandler.UploadProfilePic)
		file.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleTeacher, model.RoleAdmin)).Post("/upload/lesson_pic/{lessonId}", fileHandler.UploadLessonPic)
		file.Get("/{uniqueId}", fileHandler.Serve)
		file.Get("/{uniqueId}/thumbnail", fileHandler.ServeThumbnail)
	})

	return r
}
