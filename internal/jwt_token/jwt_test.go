package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cultiva/pkg/domain"
	dErrors "cultiva/pkg/domain-errors"
)

var tokenService = NewService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var actor = domain.Actor("0x00112233445566778899aabbccddeeff00112233")
var expiresIn = time.Hour

func Test_GenerateActorToken(t *testing.T) {
	token, err := tokenService.GenerateActorToken(actor, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	claims, err := tokenService.ValidateToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, string(actor), claims.Actor)
	assert.Equal(t, string(actor), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := tokenService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := tokenService.GenerateActorToken(actor, -time.Hour)
	require.NoError(t, err)

	_, err = tokenService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewService("other-key", "test-issuer", "test-audience")
	token, err := other.GenerateActorToken(actor, expiresIn)
	require.NoError(t, err)

	_, err = tokenService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ExtractActor(t *testing.T) {
	token, err := tokenService.GenerateActorToken(actor, expiresIn)
	require.NoError(t, err)

	got, err := tokenService.ExtractActor(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func Test_ExtractActor_EmptySubject(t *testing.T) {
	token, err := tokenService.GenerateActorToken(domain.Actor(""), expiresIn)
	require.NoError(t, err)

	_, err = tokenService.ExtractActor(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ExtractActor_NormalizesAddressCase(t *testing.T) {
	token, err := tokenService.GenerateActorToken(domain.Actor("0xAABBccddeeff00112233445566778899aabbccdd"), expiresIn)
	require.NoError(t, err)

	got, err := tokenService.ExtractActor(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor("0xaabbccddeeff00112233445566778899aabbccdd"), got)
}
