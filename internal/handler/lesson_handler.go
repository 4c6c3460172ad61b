package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"notebridge/internal/middleware"
	"notebridge/internal/model"
	"notebridge/internal/service"
	"notebridge/pkg/apierror"
)

type LessonHandler struct {
	service *service.LessonService
}

func NewLessonHandler(service *service.LessonService) *LessonHandler {
	return &LessonHandler{service: service}
}

func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListActive(r.Context())
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode:  http.StatusOK,
		LessonsList: lessons,
		Message:     "Lessons retrieved successfully",
	})
}

func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	lessonID, err := int64Param(r, "lessonId")
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	lesson, err := h.service.GetByID(r.Context(), lessonID)
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode: http.StatusOK,
		Lesson:     &lesson,
		Message:    "Lesson retrieved successfully",
	})
}

func (h *LessonHandler) ListByTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID, err := int64Param(r, "teacherId")
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	lessons, err := h.service.ListByTeacher(r.Context(), teacherID)
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode:  http.StatusOK,
		LessonsList: lessons,
		Message:     "Lessons retrieved successfully",
	})
}

// Create makes a lesson owned by the authenticated teacher.
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeLessonFailure(w, model.ErrUnauthorized)
		return
	}

	var payload model.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeLessonFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	lesson, err := h.service.Create(r.Context(), claims.UserID, payload)
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode: http.StatusOK,
		Lesson:     &lesson,
		Message:    "Lesson created successfully",
	})
}

// CreateForAdmin makes a lesson for the teacher named in the body.
func (h *LessonHandler) CreateForAdmin(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeLessonFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if payload.TeacherID <= 0 {
		writeLessonFailure(w, apierror.New("BAD_REQUEST", "teacherId is required", "teacherId", http.StatusBadRequest))
		return
	}

	lesson, err := h.service.Create(r.Context(), payload.TeacherID, payload)
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode: http.StatusOK,
		Lesson:     &lesson,
		Message:    "Lesson created successfully",
	})
}

func (h *LessonHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *LessonHandler) UpdateForAdmin(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *LessonHandler) update(w http.ResponseWriter, r *http.Request, admin bool) {
	defer r.Body.Close()

	lessonID, err := int64Param(r, "lessonId")
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	actorID, err := lessonActor(r, admin)
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	var payload model.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeLessonFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	lesson, err := h.service.Update(r.Context(), lessonID, payload, actorID)
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode: http.StatusOK,
		Lesson:     &lesson,
		Message:    "Lesson updated successfully",
	})
}

func (h *LessonHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.setCancelled(w, r, false, true)
}

func (h *LessonHandler) CancelForAdmin(w http.ResponseWriter, r *http.Request) {
	h.setCancelled(w, r, true, true)
}

func (h *LessonHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setCancelled(w, r, false, false)
}

func (h *LessonHandler) ReactivateForAdmin(w http.ResponseWriter, r *http.Request) {
	h.setCancelled(w, r, true, false)
}

func (h *LessonHandler) setCancelled(w http.ResponseWriter, r *http.Request, admin bool, cancelled bool) {
	lessonID, err := int64Param(r, "lessonId")
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	actorID, err := lessonActor(r, admin)
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	if cancelled {
		err = h.service.Cancel(r.Context(), lessonID, actorID)
	} else {
		err = h.service.Reactivate(r.Context(), lessonID, actorID)
	}
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	message := "Lesson cancelled successfully"
	if !cancelled {
		message = "Lesson reactivated successfully"
	}
	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode: http.StatusOK,
		Message:    message,
	})
}

// ListAll serves every lesson, cancelled included. Admin only.
func (h *LessonHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListAll(r.Context())
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode:  http.StatusOK,
		LessonsList: lessons,
		Message:     "Lessons retrieved successfully",
	})
}

func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lessonID, err := int64Param(r, "lessonId")
	if err != nil {
		writeLessonFailure(w, err)
		return
	}

	if err := h.service.DeletePermanently(r.Context(), lessonID); err != nil {
		writeLessonFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LessonEnvelope{
		StatusCode: http.StatusOK,
		Message:    "Lesson deleted successfully",
	})
}

// lessonActor resolves who is acting: admin paths return zero to skip
// ownership checks, teacher paths return the caller's id.
func lessonActor(r *http.Request, admin bool) (int64, error) {
	if admin {
		return 0, nil
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return 0, model.ErrUnauthorized
	}
	return claims.UserID, nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.New("BAD_REQUEST", name+" is required", name, http.StatusBadRequest)
	}
	return id, nil
}
