package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notebridge/internal/config"
	"notebridge/internal/database"
	"notebridge/internal/event"
	"notebridge/internal/handler"
	"notebridge/internal/middleware"
	"notebridge/internal/repository"
	"notebridge/internal/router"
	"notebridge/internal/service"
	"notebridge/internal/websocket"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	fileRepo := repository.NewFileRepository(pool)
	slog.Info("database ready")

	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, userRepo, tokenRepo)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go authService.StartTokenCleanup(cleanupCtx, cfg.TokenCleanupInterval)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run()

	lessonService := service.NewLessonService(lessonRepo, userRepo, bus)
	lessonHandler := handler.NewLessonHandler(lessonService)

	chatService := service.NewChatService(chatRepo, userRepo, bus)
	chatHandler := handler.NewChatHandler(chatService)

	messageService := service.NewMessageService(messageRepo, chatRepo, userRepo, bus)
	messageHandler := handler.NewMessageHandler(messageService)

	fileService, err := service.NewFileService(
		cfg.UploadRoot,
		cfg.ThumbnailRoot,
		cfg.ThumbnailSize,
		cfg.PublicBaseURL,
		cfg.AllowedImageMIMETypes,
		fileRepo,
		userRepo,
		lessonRepo,
	)
	if err != nil {
		cleanupCancel()
		db.Close()
		return nil, fmt.Errorf("failed to initialize file service: %w", err)
	}
	fileHandler := handler.NewFileHandler(fileService, cfg.MaxUploadSize)

	appRouter := router.New(
		cfg,
		authMiddleware,
		authHandler,
		userHandler,
		lessonHandler,
		chatHandler,
		messageHandler,
		fileHandler,
		websocket.ServeWS(hub, authService),
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				cleanupCancel()
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Drain in-flight requests before releasing their dependencies.
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
