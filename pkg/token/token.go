package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes длина токена в байтах до кодирования (256 бит энтропии)
const tokenBytes = 32

// New генерирует непрозрачный URL-safe токен с высокой энтропией
func New() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
