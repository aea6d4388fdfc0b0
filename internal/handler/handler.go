package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/httputil"
	"inkwell/internal/transport/http/middleware"
	"inkwell/internal/validate"
)

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// queryID parses an id-valued query parameter; zero means absent.
func queryID(r *http.Request, name string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

var errBadAfterCursor = errors.New("invalid after cursor")

// queryAfter parses the `after` cursor. Clients send either the ISO timestamp
// they got back from a previous response or raw epoch milliseconds; anything
// else is an error, not a silently dropped cursor.
func queryAfter(r *http.Request) (*time.Time, error) {
	raw := r.URL.Query().Get("after")
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errBadAfterCursor
	}
	t := time.UnixMilli(ms)
	return &t, nil
}

// actor returns the authenticated user id, writing a 401 when absent.
func actor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
	}
	return userID, ok
}

// viewer returns the optional authenticated user id on public endpoints.
func viewer(r *http.Request) *int64 {
	if id, ok := middleware.UserID(r.Context()); ok {
		return &id
	}
	return nil
}

// writeValidation writes validation failures field-keyed; other errors fall
// through to the caller.
func writeValidation(w http.ResponseWriter, err error) bool {
	if fields, ok := validate.AsFieldErrors(err); ok {
		httputil.WriteValidationError(w, fields)
		return true
	}
	return false
}
