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

type UserHandler struct {
	service *service.AuthService
}

func NewUserHandler(service *service.AuthService) *UserHandler {
	return &UserHandler{service: service}
}

// Profile serves the authenticated user's own record, the authoritative
// source the client caches.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeAuthFailure(w, model.ErrUnauthorized)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthEnvelope{
		StatusCode: http.StatusOK,
		User:       &user,
		Message:    "User retrieved successfully",
	})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID, err := userIDParam(r)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	if err := requireSelfOrAdmin(r, userID); err != nil {
		writeAuthFailure(w, err)
		return
	}

	var payload model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAuthFailure(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), userID, payload)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthEnvelope{
		StatusCode: http.StatusOK,
		User:       &user,
		Message:    "User updated successfully",
	})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	if err := requireSelfOrAdmin(r, userID); err != nil {
		writeAuthFailure(w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		writeAuthFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthEnvelope{
		StatusCode: http.StatusOK,
		Message:    "User deleted successfully",
	})
}

// List serves every account. Admin only, enforced by the router.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthEnvelope{
		StatusCode: http.StatusOK,
		UsersList:  users,
		Message:    "Users retrieved successfully",
	})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		writeAuthFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthEnvelope{
		StatusCode: http.StatusOK,
		User:       &user,
		Message:    "User retrieved successfully",
	})
}

func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "userId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.New("BAD_REQUEST", "user id is required", "userId", http.StatusBadRequest)
	}
	return id, nil
}

// requireSelfOrAdmin allows a user to act on their own record and admins to
// act on anyone's.
func requireSelfOrAdmin(r *http.Request, userID int64) error {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return model.ErrUnauthorized
	}
	if claims.UserID != userID && !claims.Role.Is(model.RoleAdmin) {
		return model.ErrForbidden
	}
	return nil
}
