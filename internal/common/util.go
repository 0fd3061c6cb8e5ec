package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates size random bytes from crypto/rand and returns
// them hex encoded, so the result is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ShortToken returns a log-safe prefix of a secret token.
func ShortToken(token string) string {
	const keep = 8
	if len(token) <= keep {
		return "***"
	}
	return token[:keep] + "..."
}
