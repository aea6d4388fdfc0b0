package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/service"
)

const testSecret = "test-secret"

func testToken(t *testing.T, userID int64) string {
	t.Helper()
	auth := service.NewAuthService(&config.Config{JWTSecret: testSecret, AccessTokenMaxAge: 3600})
	token, err := auth.GenerateAccessToken(userID)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuth_BearerToken(t *testing.T) {
	var gotID int64
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotID, _ = UserID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, 42))
	rec := httptest.NewRecorder()

	Auth(testSecret)(next).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("handler not called, status %d", rec.Code)
	}
	if gotID != 42 {
		t.Errorf("user id = %d, want 42", gotID)
	}
}

func TestAuth_CookieFallback(t *testing.T) {
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: testToken(t, 7)})
	rec := httptest.NewRecorder()

	Auth(testSecret)(next).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("handler not called, status %d", rec.Code)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Auth(testSecret)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestOptionalAuth_PassesThroughWithoutToken(t *testing.T) {
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := UserID(r.Context()); ok {
			t.Error("unexpected user id in context")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	OptionalAuth(testSecret)(next).ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler not called")
	}
}

func TestOptionalAuth_InjectsValidToken(t *testing.T) {
	var gotID int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, 9))
	rec := httptest.NewRecorder()

	OptionalAuth(testSecret)(next).ServeHTTP(rec, req)

	if gotID != 9 {
		t.Errorf("user id = %d, want 9", gotID)
	}
}
