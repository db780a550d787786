package jwtutil

import (
	"testing"

	"checksuite-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := GenerateToken("owner@acme.test", "user-1", "ws-1", "Acme", "owner")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@acme.test", claims.Email)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ws-1", claims.WorkspaceID)
	assert.Equal(t, "Acme", claims.WorkspaceName)
	assert.Equal(t, "owner", claims.Role)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := GenerateToken("owner@acme.test", "user-1", "ws-1", "Acme", "owner")
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
