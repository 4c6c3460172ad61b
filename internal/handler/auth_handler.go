package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"notebridge/internal/model"
	"notebridge/internal/service"
	"notebridge/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAuthFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	pair, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthEnvelope{
		StatusCode:     http.StatusOK,
		Token:          pair.Token,
		RefreshToken:   pair.RefreshToken,
		Role:           pair.User.Role.String(),
		ExpirationTime: pair.ExpirationTime,
		Message:        "Successfully logged in",
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAuthFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthEnvelope{
		StatusCode: http.StatusOK,
		User:       &user,
		Message:    "User Saved Successfully",
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAuthFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeAuthFailure(w, apierror.New("BAD_REQUEST", "refreshToken is required", "refreshToken", http.StatusBadRequest))
		return
	}

	pair, err := h.service.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthEnvelope{
		StatusCode:     http.StatusOK,
		Token:          pair.Token,
		RefreshToken:   pair.RefreshToken,
		Role:           pair.User.Role.String(),
		ExpirationTime: pair.ExpirationTime,
		Message:        "Successfully refreshed the token",
	})
}
