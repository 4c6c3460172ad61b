package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"notebridge/internal/model"
	"notebridge/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// failureStatus maps an error to the in-body status code and user-facing
// message. The transport status stays 200 on envelope endpoints; clients
// read the body.
func failureStatus(err error) (int, string) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus, apiErr.Message
	}

	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, model.ErrLessonNotFound):
		return http.StatusNotFound, "Lesson not found"
	case errors.Is(err, model.ErrChatNotFound):
		return http.StatusNotFound, "Chat not found"
	case errors.Is(err, model.ErrMessageNotFound):
		return http.StatusNotFound, "Message not found"
	case errors.Is(err, model.ErrFileNotFound):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, model.ErrUserAlreadyExists):
		return http.StatusConflict, "User with this email already exist."
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, model.ErrTokenNotFound), errors.Is(err, model.ErrTokenExpired):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrNotParticipant):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, model.ErrInvalidRole), errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	default:
		slog.Error("unhandled error in failureStatus", "error", err.Error())
		return http.StatusInternalServerError, "Unexpected server error"
	}
}

func writeAuthFailure(w http.ResponseWriter, err error) {
	status, message := failureStatus(err)
	writeJSON(w, http.StatusOK, model.AuthEnvelope{StatusCode: status, Message: message})
}

func writeLessonFailure(w http.ResponseWriter, err error) {
	status, message := failureStatus(err)
	writeJSON(w, http.StatusOK, model.LessonEnvelope{StatusCode: status, Message: message})
}

func writeChatFailure(w http.ResponseWriter, err error) {
	status, message := failureStatus(err)
	writeJSON(w, http.StatusOK, model.ChatEnvelope{StatusCode: status, Message: message})
}

func writeMessageFailure(w http.ResponseWriter, err error) {
	status, message := failureStatus(err)
	writeJSON(w, http.StatusOK, model.MessageEnvelope{StatusCode: status, Message: message})
}

func writeFileFailure(w http.ResponseWriter, err error) {
	status, message := failureStatus(err)
	writeJSON(w, http.StatusOK, model.FileEnvelope{StatusCode: status, Message: message})
}
