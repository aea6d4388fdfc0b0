package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/internal/validate"
)

type UserHandler struct {
	userService *service.UserService
	log         *zap.SugaredLogger
}

func NewUserHandler(userService *service.UserService, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// GetByUsername handles GET /users/{username}.
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		h.log.Errorw("get user failed", "username", username, "error", err)
		httputil.WriteInternalError(w, "Failed to load user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.NewCreator(user))
}

// Update handles PATCH /me.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		h.log.Errorw("update user failed", "user", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to update user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.NewCreator(user))
}

// ChangePassword handles PUT /me/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req model.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		if !writeValidation(w, err) {
			httputil.WriteBadRequest(w, "Invalid request")
		}
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			httputil.WriteUnauthorized(w, "Current password is incorrect")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			h.log.Errorw("change password failed", "user", userID, "error", err)
			httputil.WriteInternalError(w, "Failed to change password")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
