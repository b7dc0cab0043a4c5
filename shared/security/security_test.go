package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/account-api/shared/security"
)

func newTestHasher() *security.Hasher {
	// Minimal cost to keep the suite fast.
	return security.NewHasher(security.HasherParams{
		TimeCost:    1,
		MemoryCost:  8 * 1024,
		Parallelism: 1,
	})
}

func TestHashAndVerifyPassword(t *testing.T) {
	hasher := newTestHasher()

	hash, err := hasher.HashPassword("Aa1!aaaa")
	require.NoError(t, err)
	assert.NotEqual(t, "Aa1!aaaa", hash)

	ok, err := hasher.VerifyPassword("Aa1!aaaa", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	hasher := newTestHasher()

	first, err := hasher.HashPassword("Aa1!aaaa")
	require.NoError(t, err)

	second, err := hasher.HashPassword("Aa1!aaaa")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestGenerateOpaqueToken(t *testing.T) {
	token, err := security.GenerateOpaqueToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64) // hex doubles the byte length

	other, err := security.GenerateOpaqueToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashOpaqueTokenIsDeterministic(t *testing.T) {
	hash := security.HashOpaqueToken("raw-token")

	assert.Equal(t, security.HashOpaqueToken("raw-token"), hash)
	assert.NotEqual(t, security.HashOpaqueToken("other-token"), hash)
	assert.Len(t, hash, 64)
}

func TestNewVerificationToken(t *testing.T) {
	token, err := security.NewVerificationToken(24 * time.Hour)
	require.NoError(t, err)

	assert.NotEmpty(t, token.Raw)
	assert.Equal(t, security.HashOpaqueToken(token.Raw), token.Hash)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), token.ExpiresAt, 5*time.Second)
}

func TestNewPasswordResetToken(t *testing.T) {
	token, err := security.NewPasswordResetToken(time.Hour)
	require.NoError(t, err)

	assert.NotEmpty(t, token.Raw)
	assert.Equal(t, security.HashOpaqueToken(token.Raw), token.Hash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)
}
