package handler

import (
	"net/http"

	"go.uber.org/zap"

	"inkwell/internal/httputil"
	"inkwell/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	log                 *zap.SugaredLogger
}

func NewNotificationHandler(notificationService *service.NotificationService, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, log: log}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	resp, err := h.notificationService.List(r.Context(), userID, queryInt(r, "limit", 0))
	if err != nil {
		h.log.Errorw("list notifications failed", "user", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to list notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// MarkAllRead handles PUT /notifications/read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), userID); err != nil {
		h.log.Errorw("mark notifications read failed", "user", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to mark notifications read")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
