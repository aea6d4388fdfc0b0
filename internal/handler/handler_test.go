package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"inkwell/internal/logger"
)

func TestQueryAfter(t *testing.T) {
	iso := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		want    *time.Time
		wantErr bool
	}{
		{"absent", "", nil, false},
		{"iso timestamp", "2024-01-01T00:00:00Z", &iso, false},
		{"iso with offset", "2024-01-01T07:00:00+07:00", &iso, false},
		{"epoch milliseconds", "1704067200000", &iso, false},
		{"malformed", "yesterday", nil, true},
		{"date without time", "2024-01-01", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/posts?after="+url.QueryEscape(tt.raw), nil)

			got, err := queryAfter(req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("queryAfter(%q) = %v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("queryAfter(%q): %v", tt.raw, err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("queryAfter(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("queryAfter(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// An ISO cursor must be recognized as a cursor, not silently dropped: sent
// without `by` it has to hit the after-requires-by guard rather than fall
// through to the uncursored listing.
func TestPostList_ISOCursorNotDropped(t *testing.T) {
	h := NewPostHandler(nil, nil, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/posts?after=2024-01-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (after requires by)", rec.Code)
	}
}

func TestPostList_MalformedCursorRejected(t *testing.T) {
	h := NewPostHandler(nil, nil, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/posts?by=1&after=not-a-cursor", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed cursor", rec.Code)
	}
}
