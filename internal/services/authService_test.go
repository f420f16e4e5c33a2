package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealbridge/mealbridge/internal/config"
	"github.com/mealbridge/mealbridge/internal/models"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, VerifyPassword("password123", hash))
	assert.False(t, VerifyPassword("wrong-password", hash))
	assert.False(t, VerifyPassword("password123", "not-a-bcrypt-hash"))
}

func TestGenerateJWTClaims(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenString, err := GenerateJWT("64f000000000000000000001", models.RoleBeneficiary)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.JWTSecret()), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "64f000000000000000000001", claims["sub"])
	assert.Equal(t, models.RoleBeneficiary, claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), exp.Time, time.Minute)
}

func TestGenerateJWTRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	tokenString, err := GenerateJWT("64f000000000000000000001", models.RoleMember)
	require.NoError(t, err)

	_, err = jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("a-different-secret"), nil
	})
	assert.Error(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.org", NormalizeEmail("  Jane@Example.ORG "))
	assert.Equal(t, "jane@example.org", NormalizeEmail("jane@example.org"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, models.ValidRole(models.RoleBeneficiary))
	assert.True(t, models.ValidRole(models.RoleMember))
	assert.False(t, models.ValidRole("admin"))
	assert.False(t, models.ValidRole(""))
}

func TestRegisterUserRejectsInvalidRoleBeforeStorage(t *testing.T) {
	// Runs without a database: the role gate fires before any collection access.
	_, err := RegisterUser("Jane", "jane@example.org", "password123", "admin", "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
