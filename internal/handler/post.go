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

type PostHandler struct {
	postService  *service.PostService
	topicService *service.TopicService
	log          *zap.SugaredLogger
}

func NewPostHandler(postService *service.PostService, topicService *service.TopicService, log *zap.SugaredLogger) *PostHandler {
	return &PostHandler{
		postService:  postService,
		topicService: topicService,
		log:          log,
	}
}

// Create handles POST /posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req model.CreatePostRequest
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

	post, err := h.postService.Create(r.Context(), userID, req)
	if err != nil {
		h.log.Errorw("create post failed", "user", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to create post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// List handles GET /posts.
//
// Query vocabulary: limit, skip, after, random, by, topic, title_like, not.
// With both by and after set the strict created_at cursor variant runs;
// random overrides skip with a windowed random offset.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	after, err := queryAfter(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid after cursor")
		return
	}
	if after != nil {
		by := queryID(r, "by")
		if by == 0 {
			httputil.WriteBadRequest(w, "after requires by")
			return
		}
		posts, err := h.postService.ListByUser(r.Context(), by, after)
		if err != nil {
			h.log.Errorw("list user posts failed", "by", by, "error", err)
			httputil.WriteInternalError(w, "Failed to list posts")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, posts)
		return
	}

	filter := model.PostFilter{
		By:         queryID(r, "by"),
		TitleMatch: q.Get("title_like"),
		ExcludeID:  queryID(r, "not"),
		Limit:      queryInt(r, "limit", model.DefaultListLimit),
		Skip:       queryInt(r, "skip", 0),
		Random:     q.Get("random") == "true" || q.Get("random") == "1",
	}

	if value := q.Get("topic"); value != "" {
		topic, err := h.topicService.GetByValue(r.Context(), value)
		if err != nil {
			if errors.Is(err, model.ErrTopicNotFound) {
				// Unknown topic filters everything out.
				httputil.WriteJSON(w, http.StatusOK, []model.PostView{})
				return
			}
			h.log.Errorw("resolve topic failed", "topic", value, "error", err)
			httputil.WriteInternalError(w, "Failed to list posts")
			return
		}
		filter.Topic = topic.ID
	}

	posts, err := h.postService.List(r.Context(), filter)
	if err != nil {
		h.log.Errorw("list posts failed", "error", err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// GetByID handles GET /posts/{id}.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID, viewer(r))
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		h.log.Errorw("get post failed", "post", postID, "error", err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Update handles PATCH /posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	postID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), postID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrForbidden):
			httputil.WriteForbidden(w, "You can only edit your own posts")
		default:
			h.log.Errorw("update post failed", "post", postID, "error", err)
			httputil.WriteInternalError(w, "Failed to update post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// GetLikes handles GET /posts/{id}/likes.
func (h *PostHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	h.writeRelationList(w, r, h.postService.GetLikes)
}

// Like handles PUT /posts/{id}/likes.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.mutateRelation(w, r, h.postService.Like)
}

// Unlike handles DELETE /posts/{id}/likes.
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.mutateRelation(w, r, h.postService.Unlike)
}

// GetBookmarks handles GET /posts/{id}/bookmarks.
func (h *PostHandler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	h.writeRelationList(w, r, h.postService.GetBookmarks)
}

// Bookmark handles PUT /posts/{id}/bookmarks.
func (h *PostHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	h.mutateRelation(w, r, h.postService.Bookmark)
}

// Unbookmark handles DELETE /posts/{id}/bookmarks.
func (h *PostHandler) Unbookmark(w http.ResponseWriter, r *http.Request) {
	h.mutateRelation(w, r, h.postService.Unbookmark)
}

// GetBookmarkedPosts handles GET /user/bookmarks.
func (h *PostHandler) GetBookmarkedPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	posts, err := h.postService.GetBookmarkedPosts(r.Context(), userID)
	if err != nil {
		h.log.Errorw("list bookmarked posts failed", "user", userID, "error", err)
		httputil.WriteInternalError(w, "Failed to list bookmarks")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, posts)
}

// writeRelationList serves the membership arrays (likes, bookmarks) as
// stringified user ids.
func (h *PostHandler) writeRelationList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, postID int64) ([]int64, error)) {
	postID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	ids, err := list(r.Context(), postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		h.log.Errorw("list post relation failed", "post", postID, "error", err)
		httputil.WriteInternalError(w, "Failed to list")
		return
	}

	out := model.IDStrings(ids)
	if out == nil {
		out = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// mutateRelation runs an authenticated like/bookmark add or remove and maps
// the sentinel errors to status codes.
func (h *PostHandler) mutateRelation(w http.ResponseWriter, r *http.Request, mutate func(ctx context.Context, postID, userID int64) error) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	postID, err := idParam(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	if err := mutate(r.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotLiked):
			httputil.WriteConflict(w, "Post is not liked")
		case errors.Is(err, model.ErrNotBookmarked):
			httputil.WriteConflict(w, "Post is not bookmarked")
		default:
			h.log.Errorw("post relation mutation failed", "post", postID, "user", userID, "error", err)
			httputil.WriteInternalError(w, "Failed to update post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
