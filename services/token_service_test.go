package services

import (
	"testing"

	"qr-restaurant-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("access-secret", "refresh-secret")
	userID := uuid.New()

	pair, err := tokens.GeneratePair(userID, models.RoleStaff)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	identity, err := tokens.Verify(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, models.RoleStaff, identity.Role)

	identity, err = tokens.Verify(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
}

func TestTokenTypeConfusionRejected(t *testing.T) {
	tokens := NewTokenService("access-secret", "refresh-secret")

	pair, err := tokens.GeneratePair(uuid.New(), models.RoleCustomer)
	require.NoError(t, err)

	// a refresh token must never pass as an access token, and vice versa
	_, err = tokens.Verify(pair.RefreshToken, TokenTypeAccess)
	assert.Error(t, err)

	_, err = tokens.Verify(pair.AccessToken, TokenTypeRefresh)
	assert.Error(t, err)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tokens := NewTokenService("access-secret", "refresh-secret")
	other := NewTokenService("different-secret", "different-refresh")

	pair, err := tokens.GeneratePair(uuid.New(), models.RoleCustomer)
	require.NoError(t, err)

	_, err = other.Verify(pair.AccessToken, TokenTypeAccess)
	assert.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	tokens := NewTokenService("access-secret", "refresh-secret")

	_, err := tokens.Verify("not.a.token", TokenTypeAccess)
	assert.Error(t, err)

	_, err = tokens.Verify("", TokenTypeAccess)
	assert.Error(t, err)
}
