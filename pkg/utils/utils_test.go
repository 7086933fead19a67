package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptNumber(t *testing.T) {
	id := uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000000")
	assert.Equal(t, "RCPT-3F2A9C1E", ReceiptNumber(id))
	assert.Equal(t, ReceiptNumber(id), ReceiptNumber(id))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "soft-drinks", Slugify("  Soft   Drinks "))
	assert.Equal(t, "maize-flour-2kg", Slugify("Maize Flour (2kg)!"))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	t.Run("access token round trip", func(t *testing.T) {
		token, err := m.GenerateAccessToken(userID, "owner@duka.test")
		require.NoError(t, err)

		claims, err := m.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "owner@duka.test", claims.Email)
	})

	t.Run("refresh token cannot be used as access token", func(t *testing.T) {
		refresh, err := m.GenerateRefreshToken(userID)
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(refresh)
		assert.Error(t, err)

		got, err := m.ValidateRefreshToken(refresh)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("other secret is rejected", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour, time.Hour)
		token, err := other.GenerateAccessToken(userID, "x@y.z")
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		short := NewJWTManager("test-secret", -time.Minute, time.Hour)
		token, err := short.GenerateAccessToken(userID, "x@y.z")
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})
}
