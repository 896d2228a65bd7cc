package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vidstream/backend/internal/models"
)

func TestRequireAuth(t *testing.T) {
	manager, _, _ := newTestManager(t)
	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	reject := func(w http.ResponseWriter, _ *http.Request, _ error) {
		w.WriteHeader(http.StatusUnauthorized)
	}
	handler := RequireAuth(manager, reject)(next)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
		wantUser string
	}{
		{name: "cookie", prepare: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: tokens.AccessToken})
		}, wantCode: http.StatusNoContent, wantUser: "user-1"},
		{name: "bearer", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		}, wantCode: http.StatusNoContent, wantUser: "user-1"},
		{name: "missing", prepare: func(*http.Request) {}, wantCode: http.StatusUnauthorized},
		{name: "garbage", prepare: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer nope")
		}, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if seen != tt.wantUser {
				t.Fatalf("expected user %q, got %q", tt.wantUser, seen)
			}
		})
	}
}

func TestOptionalAuthLeavesAnonymous(t *testing.T) {
	manager, _, _ := newTestManager(t)

	var authenticated bool
	handler := OptionalAuth(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, authenticated = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: "broken"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if authenticated {
		t.Fatal("expected request with a bad token to stay anonymous")
	}
}

func TestCookieWriter(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	rec := httptest.NewRecorder()
	CookieWriter{Secure: true}.SetSession(rec, sessionTokens(expires))

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteNoneMode {
			t.Fatalf("cookie %s missing security attributes: %+v", c.Name, c)
		}
		if !c.Expires.Equal(expires) {
			t.Fatalf("cookie %s expires %v, want %v", c.Name, c.Expires, expires)
		}
	}

	rec = httptest.NewRecorder()
	CookieWriter{Secure: true}.Clear(rec)
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" || c.MaxAge >= 0 {
			t.Fatalf("expected cleared cookie, got %+v", c)
		}
	}
}

func sessionTokens(expires time.Time) models.SessionTokens {
	return models.SessionTokens{
		AccessToken:      "access",
		AccessExpiresAt:  expires,
		RefreshToken:     "refresh",
		RefreshExpiresAt: expires,
	}
}
