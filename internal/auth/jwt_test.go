package auth

import (
	"testing"

	"cokhi-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	secret := "day-la-secret-chi-dung-cho-test-0123456789"
	user := &models.User{ID: 7, Email: "chu@xuong.vn", Role: models.RoleAdmin}

	tokenStr, err := GenerateToken(secret, user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "chu@xuong.vn", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestGenerateToken_WrongSecretRejected(t *testing.T) {
	user := &models.User{ID: 3, Email: "tho@xuong.vn", Role: models.RoleStaff}

	tokenStr, err := GenerateToken("secret-dung-0123456789-0123456789", user)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(tok *jwt.Token) (interface{}, error) {
		return []byte("secret-sai-0123456789-01234567890"), nil
	})
	assert.Error(t, err)
}
