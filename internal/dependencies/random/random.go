package random

import (
	"crypto/rand"
	"encoding/base64"
)

// Random produces unguessable identifiers and can be mocked for testing
type Random interface {
	// Token returns n random bytes encoded as unpadded base64url
	Token(n int) (string, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Token returns n bytes from crypto/rand encoded as unpadded base64url
func (r *CryptoRandom) Token(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
