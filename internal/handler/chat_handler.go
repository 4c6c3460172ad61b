package handler

import (
	"encoding/json"
	"net/http"

	"notebridge/internal/middleware"
	"notebridge/internal/model"
	"notebridge/internal/service"
	"notebridge/pkg/apierror"
)

type ChatHandler struct {
	service *service.ChatService
}

func NewChatHandler(service *service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type createChatRequest struct {
	TeacherID int64  `json:"teacherId"`
	StudentID int64  `json:"studentId"`
	Subject   string `json:"subject,omitempty"`
}

// Create opens a chat between a teacher and a student, or returns the
// existing one for the pair. The caller must be one of the participants.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeChatFailure(w, model.ErrUnauthorized)
		return
	}

	var payload createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeChatFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if payload.TeacherID <= 0 || payload.StudentID <= 0 {
		writeChatFailure(w, apierror.New("BAD_REQUEST", "teacherId and studentId are required", "", http.StatusBadRequest))
		return
	}
	if claims.UserID != payload.TeacherID && claims.UserID != payload.StudentID {
		writeChatFailure(w, model.ErrForbidden)
		return
	}

	chat, isNew, err := h.service.CreateOrGet(r.Context(), payload.TeacherID, payload.StudentID, payload.Subject)
	if err != nil {
		writeChatFailure(w, err)
		return
	}

	message := "Chat retrieved successfully"
	if isNew {
		message = "Chat created successfully"
	}
	writeJSON(w, http.StatusOK, model.ChatEnvelope{
		StatusCode: http.StatusOK,
		Chat:       &chat,
		IsNewChat:  &isNew,
		Message:    message,
	})
}

func (h *ChatHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeChatFailure(w, model.ErrUnauthorized)
		return
	}

	chats, err := h.service.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		writeChatFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ChatEnvelope{
		StatusCode: http.StatusOK,
		ChatsList:  chats,
		Message:    "Chats retrieved successfully",
	})
}

func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeChatFailure(w, model.ErrUnauthorized)
		return
	}

	chatID, err := int64Param(r, "chatId")
	if err != nil {
		writeChatFailure(w, err)
		return
	}

	chat, err := h.service.GetByID(r.Context(), chatID, claims.UserID)
	if err != nil {
		writeChatFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ChatEnvelope{
		StatusCode: http.StatusOK,
		Chat:       &chat,
		Message:    "Chat retrieved successfully",
	})
}

type updateSubjectRequest struct {
	Subject string `json:"subject"`
}

func (h *ChatHandler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeChatFailure(w, model.ErrUnauthorized)
		return
	}

	chatID, err := int64Param(r, "chatId")
	if err != nil {
		writeChatFailure(w, err)
		return
	}

	var payload updateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeChatFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	chat, err := h.service.UpdateSubject(r.Context(), chatID, claims.UserID, payload.Subject)
	if err != nil {
		writeChatFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ChatEnvelope{
		StatusCode: http.StatusOK,
		Chat:       &chat,
		Message:    "Chat updated successfully",
	})
}
