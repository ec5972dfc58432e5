package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSigner(t *testing.T) {
	s := NewSigner("test-secret")

	signed := s.Sign("3f1c.state")
	value, ok := s.Verify(signed)
	require.True(t, ok)
	assert.Equal(t, "3f1c.state", value)

	_, ok = s.Verify(signed + "0")
	assert.False(t, ok)

	_, ok = NewSigner("other-secret").Verify(signed)
	assert.False(t, ok)

	for _, bad := range []string{"", ".", "nosignature", ".abc"} {
		_, ok := s.Verify(bad)
		assert.False(t, ok, bad)
	}
}

func tokenWithRoles(t *testing.T, method jwt.SigningMethod, key any, sub string, roles ...string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":                sub,
		"preferred_username": "aigerim",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"realm_access":       map[string]any{"roles": roles},
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestClaimsParser_Unverified(t *testing.T) {
	p, err := NewClaimsParser("")
	require.NoError(t, err)

	raw := tokenWithRoles(t, jwt.SigningMethodHS256, []byte("idp-key"), "user-7", "offline_access", RoleAdmin)

	claims, err := p.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.Subject)
	assert.Equal(t, "aigerim", claims.PreferredUsername)
	assert.True(t, claims.IsAdmin())

	_, err = p.Parse(tokenWithRoles(t, jwt.SigningMethodHS256, []byte("idp-key"), ""))
	assert.ErrorIs(t, err, ErrNoSubject)

	_, err = p.Parse("not-a-token")
	assert.Error(t, err)
}

func TestClaimsParser_Verified(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	p, err := NewClaimsParser(pemKey)
	require.NoError(t, err)

	claims, err := p.Parse(tokenWithRoles(t, jwt.SigningMethodRS256, key, "user-1"))
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())

	_, err = p.Parse(tokenWithRoles(t, jwt.SigningMethodHS256, []byte("forged"), "user-1", RoleAdmin))
	assert.Error(t, err)
}

func TestProvider_LoginExchangeRefresh(t *testing.T) {
	var lastForm url.Values

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realms/portal/protocol/openid-connect/token" {
			http.NotFound(w, r)
			return
		}
		_ = r.ParseForm()
		lastForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + r.PostForm.Get("grant_type"),
			"refresh_token": "refresh-2",
			"id_token":      "id-1",
			"token_type":    "Bearer",
			"expires_in":    300,
		})
	}))
	defer ts.Close()

	p, err := NewProvider(ProviderConfig{
		IssuerURL:    ts.URL + "/realms/portal/",
		ClientID:     "portal",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
	})
	require.NoError(t, err)

	login, err := p.StartLogin("en")
	require.NoError(t, err)

	u, err := url.Parse(login.URL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "/realms/portal/protocol/openid-connect/auth", u.Path)
	assert.Equal(t, login.State, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, oauth2.S256ChallengeFromVerifier(login.Verifier), q.Get("code_challenge"))
	assert.Equal(t, "en", q.Get("ui_locales"))

	ctx := context.Background()
	tok, err := p.Exchange(ctx, "code-1", login.Verifier)
	require.NoError(t, err)
	assert.Equal(t, "access-authorization_code", tok.AccessToken)
	assert.Equal(t, login.Verifier, lastForm.Get("code_verifier"))
	assert.Equal(t, "id-1", IDToken(tok))

	valid := &oauth2.Token{AccessToken: "still-valid", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}
	same, err := p.Refresh(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, "still-valid", same.AccessToken)

	expired := &oauth2.Token{AccessToken: "old", RefreshToken: "refresh-1", Expiry: time.Now().Add(-time.Minute)}
	fresh, err := p.Refresh(ctx, expired)
	require.NoError(t, err)
	assert.Equal(t, "access-refresh_token", fresh.AccessToken)
	assert.Equal(t, "refresh-1", lastForm.Get("refresh_token"))
}

func TestProvider_LogoutURL(t *testing.T) {
	p, err := NewProvider(ProviderConfig{IssuerURL: "https://id.example.com/realms/portal", ClientID: "portal"})
	require.NoError(t, err)

	u, err := url.Parse(p.LogoutURL("id-1", "https://portal.example.com/ru"))
	require.NoError(t, err)
	assert.Equal(t, "/realms/portal/protocol/openid-connect/logout", u.Path)
	assert.Equal(t, "id-1", u.Query().Get("id_token_hint"))

	_, err = NewProvider(ProviderConfig{})
	assert.Error(t, err)
}
