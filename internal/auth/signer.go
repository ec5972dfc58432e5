// Package auth реализует вход через провайдера OIDC, подпись cookie и разбор
// claims токена доступа.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signer подписывает значения cookie HMAC-SHA256.
type Signer struct {
	secretKey []byte
}

// NewSigner создаёт подписчик. Пустой секрет заменяется случайным ключом,
// и подписанные cookie перестают быть валидными после перезапуска.
func NewSigner(secret string) *Signer {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}
	return &Signer{secretKey: key}
}

// Sign возвращает "value.signature".
func (s *Signer) Sign(value string) string {
	return value + "." + s.signature(value)
}

// Verify проверяет подпись и возвращает исходное значение.
func (s *Signer) Verify(signed string) (string, bool) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 {
		return "", false
	}
	value, signature := signed[:i], signed[i+1:]

	if !hmac.Equal([]byte(signature), []byte(s.signature(value))) {
		return "", false
	}
	return value, true
}

func (s *Signer) signature(value string) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
