package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// ProviderConfig описывает клиента OIDC-провайдера (realm в стиле Keycloak).
type ProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Provider выполняет authorization code flow с PKCE и обновление токенов.
type Provider struct {
	cfg        oauth2.Config
	issuer     string
	httpClient *http.Client
}

func NewProvider(c ProviderConfig) (*Provider, error) {
	if c.IssuerURL == "" || c.ClientID == "" {
		return nil, errors.New("oidc issuer and client id are required")
	}
	issuer := strings.TrimRight(c.IssuerURL, "/")

	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}

	return &Provider{
		cfg: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  issuer + "/protocol/openid-connect/auth",
				TokenURL: issuer + "/protocol/openid-connect/token",
			},
		},
		issuer:     issuer,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

func (p *Provider) ctx(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// Login хранит параметры начала входа, которые нужно сохранить до callback.
type Login struct {
	State    string
	Verifier string
	URL      string
}

// StartLogin генерирует state и PKCE verifier и строит адрес входа.
func (p *Provider) StartLogin(locale string) (Login, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return Login{}, fmt.Errorf("generate state: %w", err)
	}
	state := hex.EncodeToString(buf)
	verifier := oauth2.GenerateVerifier()

	opts := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
	if locale != "" {
		opts = append(opts, oauth2.SetAuthURLParam("ui_locales", locale))
	}

	return Login{
		State:    state,
		Verifier: verifier,
		URL:      p.cfg.AuthCodeURL(state, opts...),
	}, nil
}

// Exchange меняет код авторизации на набор токенов.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	tok, err := p.cfg.Exchange(p.ctx(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

// Refresh возвращает действующий токен, обновляя его по refresh token при
// истечении. Если токен ещё действителен, возвращается он же.
func (p *Provider) Refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	fresh, err := p.cfg.TokenSource(p.ctx(ctx), tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return fresh, nil
}

// LogoutURL строит адрес завершения сессии у провайдера.
func (p *Provider) LogoutURL(idToken, redirect string) string {
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	if idToken != "" {
		q.Set("id_token_hint", idToken)
	}
	if redirect != "" {
		q.Set("post_logout_redirect_uri", redirect)
	}
	return p.issuer + "/protocol/openid-connect/logout?" + q.Encode()
}

// IDToken достаёт id_token из ответа провайдера.
func IDToken(tok *oauth2.Token) string {
	if v, ok := tok.Extra("id_token").(string); ok {
		return v
	}
	return ""
}
