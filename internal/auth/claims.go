package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin открывает административные разделы.
const RoleAdmin = "admin"

var ErrNoSubject = errors.New("token has no subject")

// Claims содержит поля токена доступа, которые использует портал.
type Claims struct {
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.RealmAccess.Roles, role)
}

func (c *Claims) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

// ClaimsParser разбирает токены доступа. Если ключ провайдера не задан,
// подпись не проверяется: токен получен напрямую от провайдера при обмене
// кода или обновлении.
type ClaimsParser struct {
	key *rsa.PublicKey
}

// NewClaimsParser создаёт парсер; publicKeyPEM может быть пустым.
func NewClaimsParser(publicKeyPEM string) (*ClaimsParser, error) {
	if publicKeyPEM == "" {
		return &ClaimsParser{}, nil
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse provider public key: %w", err)
	}
	return &ClaimsParser{key: key}, nil
}

// Parse возвращает claims токена доступа.
func (p *ClaimsParser) Parse(accessToken string) (*Claims, error) {
	claims := &Claims{}

	if p.key == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
			return nil, fmt.Errorf("parse access token: %w", err)
		}
	} else {
		_, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (any, error) {
			return p.key, nil
		}, jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}))
		if err != nil {
			return nil, fmt.Errorf("verify access token: %w", err)
		}
	}

	if claims.Subject == "" {
		return nil, ErrNoSubject
	}
	return claims, nil
}
