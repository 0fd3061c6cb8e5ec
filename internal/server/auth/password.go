package auth

import "golang.org/x/crypto/bcrypt"

// DefaultHashCost is the bcrypt work factor used when none is configured.
const DefaultHashCost = 10

// ErrPasswordTooLong is returned for secrets bcrypt cannot hash (over 72 bytes).
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// PasswordHasher hashes and verifies account secrets with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost. Values
// outside bcrypt's accepted range fall back to DefaultHashCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *PasswordHasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt digest of secret.
func (h *PasswordHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether secret matches digest. A malformed digest is a
// mismatch, not an error.
func (h *PasswordHasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
