package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
)

type FollowHandler struct {
	followService *service.FollowService
	log           *zap.SugaredLogger
}

func NewFollowHandler(followService *service.FollowService, log *zap.SugaredLogger) *FollowHandler {
	return &FollowHandler{followService: followService, log: log}
}

// Follow handles PUT /users/{id}/follow.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	followeeID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Follow(r.Context(), userID, followeeID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "You cannot follow yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			h.log.Errorw("follow failed", "follower", userID, "followee", followeeID, "error", err)
			httputil.WriteInternalError(w, "Failed to follow")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Unfollow handles DELETE /users/{id}/follow.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	followeeID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Unfollow(r.Context(), userID, followeeID); err != nil {
		switch {
		case errors.Is(err, model.ErrNotFollowing):
			httputil.WriteConflict(w, "You are not following this user")
		default:
			h.log.Errorw("unfollow failed", "follower", userID, "followee", followeeID, "error", err)
			httputil.WriteInternalError(w, "Failed to unfollow")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetFollowers handles GET /users/{id}/followers.
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.writeUserList(w, r, h.followService.GetFollowers)
}

// GetFollowing handles GET /users/{id}/following.
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.writeUserList(w, r, h.followService.GetFollowing)
}

func (h *FollowHandler) writeUserList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID int64) ([]model.User, error)) {
	userID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	users, err := list(r.Context(), userID)
	if err != nil {
		h.log.Errorw("list follow relation failed", "user", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to list users")
		return
	}

	creators := make([]model.Creator, 0, len(users))
	for i := range users {
		creators = append(creators, *model.NewCreator(&users[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, creators)
}
