package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", hash)

	require.True(t, VerifyPassword(hash, "s3cret!"))
	require.False(t, VerifyPassword(hash, "wrong"))
	require.False(t, VerifyPassword("not-a-hash", "s3cret!"))
}

func TestHashPasswordOutOfRangeCost(t *testing.T) {
	// A bogus cost falls back to the bcrypt default instead of failing.
	hash, err := HashPassword("s3cret!", 99)
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, "s3cret!"))
}
