package utils

import (
	"testing"

	"clinic-management-server/internal/config"
	"clinic-management-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:                 "access_secret",
		JWTRefreshSecret:          "refresh_secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}

	user := &models.User{
		Role:           models.RoleDoctor,
		ApprovalStatus: models.ApprovalApproved,
	}
	user.ID = "22222222-2222-2222-2222-222222222222"

	access, refresh, err := GenerateTokens(user, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateToken(access, cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleDoctor, claims.Role)
	assert.Equal(t, models.ApprovalApproved, claims.ApprovalStatus)

	// access token does not validate against the refresh secret
	_, err = ValidateToken(access, cfg.JWTRefreshSecret)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", "secret")
	assert.Error(t, err)
}
