package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return NewService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	service := testService()
	userID := uuid.New()

	tokenString, err := service.GenerateAccessToken(userID, "admin@pronto2.example", []string{"admin"})
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := service.ValidateAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "admin@pronto2.example", claims.Email)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("customer"))
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestValidateAccessToken_Failures(t *testing.T) {
	service := testService()
	userID := uuid.New()

	t.Run("Wrong Secret", func(t *testing.T) {
		other := NewService("different-secret", "refresh-secret", time.Hour, 24*time.Hour)
		tokenString, err := service.GenerateAccessToken(userID, "a@b.c", nil)
		require.NoError(t, err)

		_, err = other.ValidateAccessToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("Refresh Token Rejected As Access", func(t *testing.T) {
		tokenString, err := service.GenerateRefreshToken(userID, "a@b.c")
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, err := service.ValidateAccessToken("not.a.token")
		assert.Error(t, err)

		// Unparsable means invalid, never "expired".
		assert.False(t, service.IsTokenExpired("not.a.token"))
	})

	t.Run("Expired Token", func(t *testing.T) {
		expired := NewService("access-secret", "refresh-secret", -time.Minute, time.Hour)
		tokenString, err := expired.GenerateAccessToken(userID, "a@b.c", nil)
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(tokenString)
		assert.Error(t, err)
		assert.True(t, service.IsTokenExpired(tokenString))
	})
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	service := testService()
	userID := uuid.New()

	tokenString, err := service.GenerateRefreshToken(userID, "a@b.c")
	require.NoError(t, err)

	claims, err := service.ValidateRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RefreshToken, claims.TokenType)
	assert.False(t, service.IsTokenExpired(tokenString))
}
