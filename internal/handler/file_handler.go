package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"notebridge/internal/middleware"
	"notebridge/internal/model"
	"notebridge/internal/service"
	"notebridge/pkg/apierror"
)

type FileHandler struct {
	service       *service.FileService
	maxUploadSize int64
}

func NewFileHandler(service *service.FileService, maxUploadSize int64) *FileHandler {
	return &FileHandler{service: service, maxUploadSize: maxUploadSize}
}

// UploadProfilePic accepts a multipart image upload and attaches it to the
// user's profile. Users may only change their own picture unless they are
// an admin.
func (h *FileHandler) UploadProfilePic(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeFileFailure(w, model.ErrUnauthorized)
		return
	}

	userID, err := int64Param(r, "userId")
	if err != nil {
		writeFileFailure(w, err)
		return
	}
	if claims.UserID != userID && !claims.Role.Is(model.RoleAdmin) {
		writeFileFailure(w, model.ErrForbidden)
		return
	}

	filename, file, err := h.formFile(w, r)
	if err != nil {
		writeFileFailure(w, err)
		return
	}
	defer file.Close()

	url, err := h.service.UploadProfilePic(r.Context(), userID, filename, file)
	if err != nil {
		writeFileFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.FileEnvelope{
		StatusCode: http.StatusOK,
		FileURL:    url,
		Message:    "File uploaded successfully",
	})
}

func (h *FileHandler) UploadLessonPic(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeFileFailure(w, model.ErrUnauthorized)
		return
	}

	lessonID, err := int64Param(r, "lessonId")
	if err != nil {
		writeFileFailure(w, err)
		return
	}

	// Admins bypass the lesson ownership check.
	actorID := claims.UserID
	if claims.Role.Is(model.RoleAdmin) {
		actorID = 0
	}

	filename, file, err := h.formFile(w, r)
	if err != nil {
		writeFileFailure(w, err)
		return
	}
	defer file.Close()

	url, err := h.service.UploadLessonPic(r.Context(), lessonID, actorID, filename, file)
	if err != nil {
		writeFileFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.FileEnvelope{
		StatusCode: http.StatusOK,
		FileURL:    url,
		Message:    "File uploaded successfully",
	})
}

// Serve streams a stored file by its unique id. Unlike the JSON endpoints
// this writes real HTTP error statuses, since callers are <img> tags and
// download links rather than the SDK.
func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	uniqueID := chi.URLParam(r, "uniqueId")

	file, mimeType, err := h.service.Open(r.Context(), uniqueID)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, file); err != nil {
		return
	}
}

func (h *FileHandler) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	uniqueID := chi.URLParam(r, "uniqueId")

	file, err := h.service.OpenThumbnail(r.Context(), uniqueID)
	if err != nil {
		http.Error(w, "thumbnail not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, file); err != nil {
		return
	}
}

func (h *FileHandler) formFile(w http.ResponseWriter, r *http.Request) (string, io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return "", nil, apierror.New("PAYLOAD_TOO_LARGE", "File exceeds the maximum upload size", "", http.StatusRequestEntityTooLarge)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, apierror.New("BAD_REQUEST", "Multipart field 'file' is required", "file", http.StatusBadRequest)
	}
	return header.Filename, file, nil
}
