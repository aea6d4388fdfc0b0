package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/internal/validate"
)

type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
	log         *zap.SugaredLogger
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		log:         log,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
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

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already in use")
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already in use")
		default:
			h.log.Errorw("register failed", "error", err)
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	h.writeToken(w, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
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

	user, err := h.userService.Authenticate(r.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		h.log.Errorw("login failed", "error", err)
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	h.writeToken(w, http.StatusOK, user)
}

// Me handles GET /me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		h.log.Errorw("get current user failed", "user", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to load user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.NewCreator(user))
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, status int, user *model.User) {
	token, err := h.authService.GenerateAccessToken(user.ID)
	if err != nil {
		h.log.Errorw("sign token failed", "user", user.ID, "error", err)
		httputil.WriteInternalError(w, "Failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		MaxAge:   h.authService.ExpiresIn(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteJSON(w, status, model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   h.authService.ExpiresIn(),
		User:        model.NewCreator(user),
	})
}
