package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"inkwell/internal/handler"
	"inkwell/internal/httputil"
	"inkwell/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes.
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	PostHandler         *handler.PostHandler
	CommentHandler      *handler.CommentHandler
	FollowHandler       *handler.FollowHandler
	NotificationHandler *handler.NotificationHandler
	MediaHandler        *handler.MediaHandler
	JWTSecret           string
	RateLimitPerMinute  int
	Log                 *zap.SugaredLogger
}

// NewRouter wires all route groups onto a chi router.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	optional := middleware.OptionalAuth(cfg.JWTSecret)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
	})

	// Public reads; a valid token enriches the response for its viewer.
	r.Group(func(r chi.Router) {
		r.Use(optional)

		r.Get("/posts", cfg.PostHandler.List)
		r.Get("/posts/{id}", cfg.PostHandler.GetByID)
		r.Get("/posts/{id}/likes", cfg.PostHandler.GetLikes)
		r.Get("/posts/{id}/bookmarks", cfg.PostHandler.GetBookmarks)
		r.Get("/posts/{id}/comments", cfg.CommentHandler.ListByPost)
		r.Get("/comments", cfg.CommentHandler.ListByUser)

		r.Get("/users/{username}", cfg.UserHandler.GetByUsername)
		r.Get("/users/{id}/followers", cfg.FollowHandler.GetFollowers)
		r.Get("/users/{id}/following", cfg.FollowHandler.GetFollowing)
	})

	// Protected routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.Get("/me", cfg.AuthHandler.Me)
		r.Patch("/me", cfg.UserHandler.Update)
		r.Put("/me/password", cfg.UserHandler.ChangePassword)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Patch("/posts/{id}", cfg.PostHandler.Update)
		r.Put("/posts/{id}/likes", cfg.PostHandler.Like)
		r.Delete("/posts/{id}/likes", cfg.PostHandler.Unlike)
		r.Put("/posts/{id}/bookmarks", cfg.PostHandler.Bookmark)
		r.Delete("/posts/{id}/bookmarks", cfg.PostHandler.Unbookmark)

		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)
		r.Put("/comments/{id}/likes", cfg.CommentHandler.Like)
		r.Delete("/comments/{id}/likes", cfg.CommentHandler.Unlike)

		r.Put("/users/{id}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{id}/follow", cfg.FollowHandler.Unfollow)

		r.Get("/user/bookmarks", cfg.PostHandler.GetBookmarkedPosts)

		r.Get("/notifications", cfg.NotificationHandler.List)
		r.Put("/notifications/read", cfg.NotificationHandler.MarkAllRead)

		if cfg.MediaHandler != nil {
			r.Post("/media/covers/presign", cfg.MediaHandler.PresignCover)
		}
	})

	return r
}
