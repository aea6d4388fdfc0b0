package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/internal/validate"
)

type CommentHandler struct {
	commentService *service.CommentService
	log            *zap.SugaredLogger
}

func NewCommentHandler(commentService *service.CommentService, log *zap.SugaredLogger) *CommentHandler {
	return &CommentHandler{commentService: commentService, log: log}
}

// Create handles POST /posts/{id}/comments.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	postID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.CreateCommentRequest
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

	comment, err := h.commentService.Create(r.Context(), postID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Parent comment not found")
		case errors.Is(err, model.ErrParentMismatch):
			httputil.WriteBadRequest(w, "Parent comment does not belong to this post")
		default:
			h.log.Errorw("create comment failed", "post", postID, "user", userID, "error", err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.NewCommentView(comment))
}

// ListByPost handles GET /posts/{id}/comments.
func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		h.log.Errorw("list comments failed", "post", postID, "error", err)
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, commentViews(comments))
}

// ListByUser handles GET /comments?by=...&after=...
func (h *CommentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	by := queryID(r, "by")
	if by == 0 {
		httputil.WriteBadRequest(w, "by is required")
		return
	}

	after, err := queryAfter(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid after cursor")
		return
	}

	comments, err := h.commentService.ListByUser(r.Context(), by, after)
	if err != nil {
		h.log.Errorw("list user comments failed", "by", by, "error", err)
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, commentViews(comments))
}

// Like handles PUT /comments/{id}/likes.
func (h *CommentHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.mutateLike(w, r, h.commentService.Like)
}

// Unlike handles DELETE /comments/{id}/likes.
func (h *CommentHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.mutateLike(w, r, h.commentService.Unlike)
}

func (h *CommentHandler) mutateLike(w http.ResponseWriter, r *http.Request, mutate func(ctx context.Context, commentID, userID int64) error) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	commentID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	if err := mutate(r.Context(), commentID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		case errors.Is(err, model.ErrCommentNotLiked):
			httputil.WriteConflict(w, "Comment is not liked")
		default:
			h.log.Errorw("comment like mutation failed", "comment", commentID, "user", userID, "error", err)
			httputil.WriteInternalError(w, "Failed to update comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func commentViews(comments []model.Comment) []model.CommentView {
	views := make([]model.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, model.NewCommentView(&comments[i]))
	}
	return views
}
