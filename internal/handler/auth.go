package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/parcel-portal/internal/auth"
	"github.com/mmeshcher/parcel-portal/internal/middleware"
	"github.com/mmeshcher/parcel-portal/internal/repository"
)

const (
	loginCookieName = "portal_login"
	loginCookieTTL  = 10 * time.Minute
)

// Login начинает вход через провайдера: state и PKCE verifier сохраняются
// в подписанном cookie до возврата на /auth/callback.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	login, err := h.provider.StartLogin(lang(r))
	if err != nil {
		h.logger.Error("start login", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     loginCookieName,
		Value:    h.signer.Sign(login.State + "." + login.Verifier),
		Path:     "/auth",
		MaxAge:   int(loginCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, login.URL, http.StatusFound)
}

// Callback завершает вход: меняет код на токены и создаёт сессию.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		h.logger.Info("login rejected by provider", zap.String("error", e))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	cookie, err := r.Cookie(loginCookieName)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	value, ok := h.signer.Verify(cookie.Value)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	state, verifier, ok := strings.Cut(value, ".")
	if !ok || state != q.Get("state") || q.Get("code") == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: loginCookieName, Path: "/auth", MaxAge: -1, HttpOnly: true})

	tok, err := h.provider.Exchange(r.Context(), q.Get("code"), verifier)
	if err != nil {
		h.logger.Warn("exchange authorization code", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	claims, err := h.claims.Parse(tok.AccessToken)
	if err != nil {
		h.logger.Warn("parse access token", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	s := repository.Session{
		ID:           uuid.New(),
		Subject:      claims.Subject,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      auth.IDToken(tok),
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if err := h.sessions.CreateSession(r.Context(), s); err != nil {
		h.logger.Error("create session", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.auth.SetSessionCookie(w, s.ID)
	h.logger.Info("user logged in", zap.String("subject", claims.Subject))

	http.Redirect(w, r, "/"+lang(r)+"/", http.StatusFound)
}

type logoutResponse struct {
	LogoutURL string `json:"logoutUrl"`
}

// Logout удаляет сессию и возвращает адрес выхода у провайдера.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var idToken string
	if id, ok := h.auth.SessionID(r); ok {
		if s, err := h.sessions.GetSession(r.Context(), id); err == nil {
			idToken = s.IDToken
		}
		if err := h.sessions.DeleteSession(r.Context(), id); err != nil {
			h.logger.Error("delete session", zap.Error(err))
		}
	}
	middleware.ClearSessionCookie(w)

	redirect := "/" + lang(r) + "/"
	if host := r.Host; host != "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		redirect = scheme + "://" + host + redirect
	}

	writeJSON(w, http.StatusOK, logoutResponse{LogoutURL: h.provider.LogoutURL(idToken, redirect)})
}

type meResponse struct {
	Subject  string   `json:"subject"`
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Name     string   `json:"name,omitempty"`
	Roles    []string `json:"roles"`
	Admin    bool     `json:"admin"`
}

// Me возвращает данные текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	roles := claims.RealmAccess.Roles
	if roles == nil {
		roles = []string{}
	}

	writeJSON(w, http.StatusOK, meResponse{
		Subject:  claims.Subject,
		Username: claims.PreferredUsername,
		Email:    claims.Email,
		Name:     claims.Name,
		Roles:    roles,
		Admin:    claims.IsAdmin(),
	})
}
