package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"notebridge/internal/middleware"
	"notebridge/internal/model"
	"notebridge/internal/service"
	"notebridge/pkg/apierror"
)

type MessageHandler struct {
	service *service.MessageService
}

func NewMessageHandler(service *service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessageFailure(w, model.ErrUnauthorized)
		return
	}

	var payload model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessageFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}
	if payload.ChatID <= 0 {
		writeMessageFailure(w, apierror.New("BAD_REQUEST", "chatId is required", "chatId", http.StatusBadRequest))
		return
	}

	message, err := h.service.Send(r.Context(), claims.UserID, payload.ChatID, payload.Content)
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageEnvelope{
		StatusCode:    http.StatusOK,
		MessageObject: &message,
		Message:       "Message sent successfully",
	})
}

// ListByChat serves a page of a chat's messages, oldest first. Paging is
// driven by the page and size query parameters.
func (h *MessageHandler) ListByChat(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessageFailure(w, model.ErrUnauthorized)
		return
	}

	chatID, err := int64Param(r, "chatId")
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 20)

	messages, total, err := h.service.ChatMessages(r.Context(), chatID, claims.UserID, page, size)
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageEnvelope{
		StatusCode:        http.StatusOK,
		MessagesList:      messages,
		TotalMessageCount: &total,
		Message:           "Messages retrieved successfully",
	})
}

func (h *MessageHandler) Recent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessageFailure(w, model.ErrUnauthorized)
		return
	}

	chatID, err := int64Param(r, "chatId")
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	messages, err := h.service.RecentChatMessages(r.Context(), chatID, claims.UserID)
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageEnvelope{
		StatusCode:   http.StatusOK,
		MessagesList: messages,
		Message:      "Messages retrieved successfully",
	})
}

// MarkRead marks every message in the chat sent by the other participant
// as read and reports how many rows changed.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessageFailure(w, model.ErrUnauthorized)
		return
	}

	chatID, err := int64Param(r, "chatId")
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	marked, err := h.service.MarkRead(r.Context(), chatID, claims.UserID)
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageEnvelope{
		StatusCode:           http.StatusOK,
		MessagesMarkedAsRead: &marked,
		Message:              "Messages marked as read",
	})
}

func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessageFailure(w, model.ErrUnauthorized)
		return
	}

	chatID, err := int64Param(r, "chatId")
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), chatID, claims.UserID)
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageEnvelope{
		StatusCode:         http.StatusOK,
		UnreadMessageCount: &count,
		Message:            "Unread count retrieved successfully",
	})
}

func (h *MessageHandler) TotalUnread(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessageFailure(w, model.ErrUnauthorized)
		return
	}

	count, err := h.service.TotalUnreadForUser(r.Context(), claims.UserID)
	if err != nil {
		writeMessageFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageEnvelope{
		StatusCode:         http.StatusOK,
		UnreadMessageCount: &count,
		Message:            "Unread count retrieved successfully",
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
