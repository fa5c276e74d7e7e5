package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "finvoice/pkg/domain-errors"
)

func TestRoundTrip(t *testing.T) {
	svc := NewJWTService("test-key", "finvoice")

	token, err := svc.GenerateAccessToken("ST2TEST", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ST2TEST", claims.Subject)
	assert.Equal(t, "finvoice", claims.Issuer)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	svc := NewJWTService("test-key", "finvoice")

	token, err := svc.GenerateAccessToken("ST2TEST", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestWrongKeyIsRejected(t *testing.T) {
	issuer := NewJWTService("key-a", "finvoice")
	verifier := NewJWTService("key-b", "finvoice")

	token, err := issuer.GenerateAccessToken("ST2TEST", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}

func TestAdapterMapsSubjectToPrincipal(t *testing.T) {
	svc := NewJWTService("test-key", "finvoice")
	adapter := NewJWTServiceAdapter(svc)

	token, err := svc.GenerateAccessToken("ST2TEST", time.Hour)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ST2TEST", string(claims.Principal))
}

func TestGarbageTokenIsRejected(t *testing.T) {
	svc := NewJWTService("test-key", "finvoice")
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
