package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
)

type MediaHandler struct {
	mediaService *service.MediaService
	log          *zap.SugaredLogger
}

func NewMediaHandler(mediaService *service.MediaService, log *zap.SugaredLogger) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, log: log}
}

// PresignCover handles POST /media/covers/presign.
func (h *MediaHandler) PresignCover(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req model.PresignCoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.mediaService.PresignCover(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequest(w, "Unsupported image type")
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequest(w, "File too large (max 10MB)")
		default:
			h.log.Errorw("presign cover failed", "user", userID, "error", err)
			httputil.WriteInternalError(w, "Failed to presign upload")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
