package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/mmeshcher/parcel-portal/internal/auth"
	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/repository"
)

type stubSessions struct {
	sessions map[uuid.UUID]repository.Session
	updated  []repository.Session
}

func (s *stubSessions) GetSession(ctx context.Context, id uuid.UUID) (*repository.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessions) UpdateTokens(ctx context.Context, sess repository.Session) error {
	s.updated = append(s.updated, sess)
	s.sessions[sess.ID] = sess
	return nil
}

type stubRefresher struct {
	token *oauth2.Token
	err   error
	calls int
}

func (r *stubRefresher) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	r.calls++
	return r.token, r.err
}

func accessToken(t *testing.T, sub string, roles ...string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          sub,
		"realm_access": map[string]any{"roles": roles},
	}).SignedString([]byte("idp"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

type authFixture struct {
	m         *AuthMiddleware
	sessions  *stubSessions
	refresher *stubRefresher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	parser, err := auth.NewClaimsParser("")
	if err != nil {
		t.Fatalf("claims parser: %v", err)
	}
	f := &authFixture{
		sessions:  &stubSessions{sessions: map[uuid.UUID]repository.Session{}},
		refresher: &stubRefresher{},
	}
	f.m = NewAuthMiddleware(auth.NewSigner("test-secret"), f.sessions, f.refresher, parser, nil)
	return f
}

func (f *authFixture) addSession(t *testing.T, token string, expiry time.Time) *http.Cookie {
	t.Helper()
	id := uuid.New()
	f.sessions.sessions[id] = repository.Session{
		ID:           id,
		AccessToken:  token,
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}

	w := httptest.NewRecorder()
	f.m.SetSessionCookie(w, id)
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no cookies set by SetSessionCookie")
	}
	return cookies[0]
}

func TestAuthMiddleware_WithValidSession(t *testing.T) {
	f := newAuthFixture(t)
	token := accessToken(t, "user-42")
	cookie := f.addSession(t, token, time.Now().Add(time.Hour))

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		got, ok := backend.TokenFrom(r.Context())
		if !ok || got != token {
			t.Fatalf("token from context = %q, %v", got, ok)
		}
		if sub := backend.SubjectFrom(r.Context()); sub != "user-42" {
			t.Fatalf("subject = %q, want user-42", sub)
		}
		if _, ok := GetSessionIDFromContext(r.Context()); !ok {
			t.Fatalf("session id not in context")
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/ru/api/orders", nil)
	r.AddCookie(cookie)

	f.m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
	if f.refresher.calls != 0 {
		t.Fatalf("refresh called for a valid token")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	f := newAuthFixture(t)
	valid := f.addSession(t, accessToken(t, "user-1"), time.Now().Add(time.Hour))

	unknown := httptest.NewRecorder()
	f.m.SetSessionCookie(unknown, uuid.New())

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"tampered cookie", &http.Cookie{Name: SessionCookieName, Value: valid.Value + "0"}},
		{"unsigned uuid", &http.Cookie{Name: SessionCookieName, Value: uuid.NewString()}},
		{"unknown session", unknown.Result().Cookies()[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("next handler should not be called")
			})

			r := httptest.NewRequest(http.MethodGet, "/ru/api/orders", nil)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			f.m.Middleware(next).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_RefreshesExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.addSession(t, accessToken(t, "user-1"), time.Now().Add(-time.Minute))

	fresh := accessToken(t, "user-1", "admin")
	f.refresher.token = &oauth2.Token{
		AccessToken:  fresh,
		RefreshToken: "refresh-2",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(5 * time.Minute),
	}

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = backend.TokenFrom(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/ru/api/orders", nil)
	r.AddCookie(cookie)
	f.m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if seen != fresh {
		t.Fatalf("handler saw stale token")
	}
	if len(f.sessions.updated) != 1 {
		t.Fatalf("refreshed tokens were not stored")
	}
	if got := f.sessions.updated[0].RefreshToken; got != "refresh-2" {
		t.Fatalf("stored refresh token = %q, want refresh-2", got)
	}
}

func TestAuthMiddleware_RefreshFailureClearsCookie(t *testing.T) {
	f := newAuthFixture(t)
	cookie := f.addSession(t, accessToken(t, "user-1"), time.Now().Add(-time.Minute))
	f.refresher.err = errors.New("invalid_grant")

	r := httptest.NewRequest(http.MethodGet, "/ru/api/orders", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()

	f.m.Middleware(http.NotFoundHandler()).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("session cookie was not cleared")
	}
}

func TestAuthMiddleware_Optional(t *testing.T) {
	f := newAuthFixture(t)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if _, ok := backend.TokenFrom(r.Context()); ok {
			t.Fatalf("anonymous request must not carry a token")
		}
	})

	f.m.Optional(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ru/api/marketplaces", nil))

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestRequireAdmin(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addSession(t, accessToken(t, "user-1", "customer"), time.Now().Add(time.Hour))
	admin := f.addSession(t, accessToken(t, "user-2", auth.RoleAdmin), time.Now().Add(time.Hour))

	h := f.m.Middleware(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   int
	}{
		{"customer", user, http.StatusForbidden},
		{"admin", admin, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPatch, "/ru/api/admin/orders/1/status", nil)
			r.AddCookie(tt.cookie)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
