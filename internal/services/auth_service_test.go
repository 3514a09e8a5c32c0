// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandatangan/katalog-backend/internal/config"
	"github.com/tandatangan/katalog-backend/internal/models"
	"github.com/tandatangan/katalog-backend/internal/utils"
)

func TestAuthServiceLogin(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	cfg.JWT = config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 24}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	user := &models.User{
		Username: "admin",
		Email:    "admin@katalog.test",
		IsAdmin:  true,
	}
	require.NoError(t, user.SetPassword("correct-horse"))
	require.NoError(t, db.Create(user).Error)

	service := NewAuthService(db, cfg)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := service.Login(&LoginRequest{
			Email:    "admin@katalog.test",
			Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, 24*3600, resp.ExpiresIn)

		claims, err := utils.ValidateJWT(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.True(t, claims.IsAdmin)

		var reloaded models.User
		require.NoError(t, db.First(&reloaded, user.ID).Error)
		assert.NotNil(t, reloaded.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(&LoginRequest{
			Email:    "admin@katalog.test",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(&LoginRequest{
			Email:    "nobody@katalog.test",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := service.Login(&LoginRequest{Email: "not-an-email"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("database failure is not a credentials error", func(t *testing.T) {
		require.NoError(t, db.Migrator().DropTable(&models.User{}))

		_, err := service.Login(&LoginRequest{
			Email:    "admin@katalog.test",
			Password: "correct-horse",
		})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}
