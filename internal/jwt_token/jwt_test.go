package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/kfrye1212/digitalpulse-tld/pkg/domain-errors"
	"github.com/kfrye1212/digitalpulse-tld/pkg/testutil"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var wallet = testutil.Wallet(0x42)
var expiresIn = time.Hour

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(wallet, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, wallet.String(), claims.Wallet)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(wallet, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ExtractWallet(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(wallet, expiresIn)
	require.NoError(t, err)

	got, err := jwtService.ExtractWallet(token)
	require.NoError(t, err)
	assert.Equal(t, wallet, got)
}

func Test_ExtractWallet_WrongKey(t *testing.T) {
	other := NewJWTService("other-key", "test-issuer", "test-audience")
	token, err := other.GenerateAccessToken(wallet, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ExtractWallet(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
