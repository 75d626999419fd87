package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/course-planner/internal/application"
)

type fakeSessionValidator struct {
	principal application.Principal
	err       error
	token     string
}

func (f *fakeSessionValidator) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	f.token = token
	return f.principal, f.err
}

func TestRequireSession(t *testing.T) {
	t.Run("rejects requests without a token", func(t *testing.T) {
		validator := &fakeSessionValidator{}
		handler := RequireSession(validator, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next handler should not run without a token")
		}))

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects revoked and expired sessions with the session error code", func(t *testing.T) {
		for _, err := range []error{application.ErrSessionRevoked, application.ErrSessionExpired} {
			validator := &fakeSessionValidator{err: err}
			handler := RequireSession(validator, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler should not run for an invalid session")
			}))

			req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
			req.Header.Set("Authorization", "Bearer stale-token")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 for %v, got %d", err, rec.Code)
			}
		}
	})

	t.Run("attaches the principal to the request context", func(t *testing.T) {
		validator := &fakeSessionValidator{principal: application.Principal{UserID: "u1", IsAdmin: true}}

		var captured application.Principal
		handler := RequireSession(validator, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, _ = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "valid-token"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if validator.token != "valid-token" {
			t.Errorf("expected cookie token forwarded, got %q", validator.token)
		}
		if captured.UserID != "u1" || !captured.IsAdmin {
			t.Errorf("unexpected principal %+v", captured)
		}
	})

	t.Run("prefers the bearer header over the cookie", func(t *testing.T) {
		validator := &fakeSessionValidator{principal: application.Principal{UserID: "u1"}}
		handler := RequireSession(validator, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if validator.token != "header-token" {
			t.Errorf("expected header token, got %q", validator.token)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Run("injects a request scoped logger", func(t *testing.T) {
		var sawLogger bool
		handler := RequestLogger(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawLogger = LoggerFromContext(r.Context()) != nil
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !sawLogger {
			t.Error("expected logger in request context")
		}
	})
}
