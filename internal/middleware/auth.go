// Package middleware содержит HTTP middleware портала.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/mmeshcher/parcel-portal/internal/auth"
	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/repository"
)

type contextKey string

const (
	sessionIDKey contextKey = "sessionID"
	claimsKey    contextKey = "claims"
)

const (
	SessionCookieName = "portal_session"
	sessionCookieTTL  = 30 * 24 * time.Hour
)

// SessionStore хранит наборы токенов.
type SessionStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (*repository.Session, error)
	UpdateTokens(ctx context.Context, s repository.Session) error
}

// TokenRefresher обновляет истёкший токен доступа.
type TokenRefresher interface {
	Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error)
}

// ClaimsParser разбирает токен доступа.
type ClaimsParser interface {
	Parse(accessToken string) (*auth.Claims, error)
}

// AuthMiddleware проверяет cookie сессии, при необходимости обновляет токены
// и кладёт токен, subject и claims в контекст запроса.
type AuthMiddleware struct {
	signer    *auth.Signer
	sessions  SessionStore
	refresher TokenRefresher
	claims    ClaimsParser
	logger    *zap.Logger
}

func NewAuthMiddleware(signer *auth.Signer, sessions SessionStore, refresher TokenRefresher, claims ClaimsParser, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{
		signer:    signer,
		sessions:  sessions,
		refresher: refresher,
		claims:    claims,
		logger:    logger,
	}
}

// Middleware пропускает только запросы с действующей сессией.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, ok := a.authenticate(w, r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional добавляет данные сессии, если она есть, но не требует её.
func (a *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctx, ok := a.authenticate(w, r); ok {
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AuthMiddleware) authenticate(w http.ResponseWriter, r *http.Request) (context.Context, bool) {
	id, ok := a.SessionID(r)
	if !ok {
		return nil, false
	}

	ctx := r.Context()
	s, err := a.sessions.GetSession(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			a.logger.Error("load session", zap.Error(err))
		}
		return nil, false
	}

	tok := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
	if !tok.Valid() {
		fresh, err := a.refresher.Refresh(ctx, tok)
		if err != nil {
			a.logger.Info("session refresh failed", zap.String("session", id.String()), zap.Error(err))
			ClearSessionCookie(w)
			return nil, false
		}

		s.AccessToken = fresh.AccessToken
		s.TokenType = fresh.TokenType
		s.Expiry = fresh.Expiry
		if fresh.RefreshToken != "" {
			s.RefreshToken = fresh.RefreshToken
		}
		if idToken := auth.IDToken(fresh); idToken != "" {
			s.IDToken = idToken
		}
		if err := a.sessions.UpdateTokens(ctx, *s); err != nil {
			a.logger.Error("store refreshed tokens", zap.Error(err))
		}
	}

	claims, err := a.claims.Parse(s.AccessToken)
	if err != nil {
		a.logger.Info("invalid access token", zap.Error(err))
		return nil, false
	}

	ctx = backend.WithToken(ctx, s.AccessToken)
	ctx = backend.WithSubject(ctx, claims.Subject)
	ctx = context.WithValue(ctx, sessionIDKey, id)
	ctx = context.WithValue(ctx, claimsKey, claims)
	return ctx, true
}

// SessionID извлекает идентификатор сессии из подписанного cookie.
func (a *AuthMiddleware) SessionID(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return uuid.Nil, false
	}
	value, ok := a.signer.Verify(cookie.Value)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// SetSessionCookie устанавливает cookie сессии.
func (a *AuthMiddleware) SetSessionCookie(w http.ResponseWriter, id uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    a.signer.Sign(id.String()),
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAdmin пропускает только пользователей с ролью администратора.
// Должен стоять после Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if !claims.IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionIDFromContext извлекает идентификатор сессии из контекста запроса.
func GetSessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionIDKey).(uuid.UUID)
	return id, ok
}

// ClaimsFromContext извлекает claims пользователя из контекста запроса.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}
