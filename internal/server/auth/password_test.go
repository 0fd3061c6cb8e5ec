package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)

	assert.True(t, h.Verify("secret1", digest))
	assert.False(t, h.Verify("secret2", digest))
}

func TestPasswordHasher_SaltsEachDigest(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestPasswordHasher_MalformedDigestIsMismatch(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	for _, digest := range []string{"", "plain", "$2a$99$garbage", strings.Repeat("x", 60)} {
		assert.False(t, h.Verify("secret1", digest), "digest %q", digest)
	}
}

func TestNewPasswordHasher_CostBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultHashCost, NewPasswordHasher(0).Cost())
	assert.Equal(t, DefaultHashCost, NewPasswordHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, 12, NewPasswordHasher(12).Cost())
}

func TestPasswordHasher_CostIsEmbedded(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	digest, err := h.Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestPasswordHasher_TooLong(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}
