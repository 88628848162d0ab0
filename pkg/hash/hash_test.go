package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("p1")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	require.NotEqual(t, "p1", h)

	assert.True(t, CheckPassword(h, "p1"))
	assert.False(t, CheckPassword(h, "p2"))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-secret")
	require.NoError(t, err)
	h2, err := HashPassword("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword(h1, "same-secret"))
	assert.True(t, CheckPassword(h2, "same-secret"))
}

func TestHashPassword_TooLong(t *testing.T) {
	t.Parallel()

	// bcrypt rejects inputs over 72 bytes
	_, err := HashPassword(strings.Repeat("a", 100))
	require.Error(t, err)
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, CheckPassword("not-a-bcrypt-hash", "p1"))
	assert.False(t, CheckPassword("", "p1"))
}
