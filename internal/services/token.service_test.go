package services

import (
	"context"
	"testing"
	"time"

	"cleanhub/config"
	"cleanhub/internal/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestTokenService_RoundTrip(t *testing.T) {
	service := NewTokenService(config.Config{JWTSecret: testSecret})
	userID := uuid.New()

	token, err := service.IssueToken(userID, time.Hour)
	require.NoError(t, err)

	got, err := service.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenService_Rejects(t *testing.T) {
	service := NewTokenService(config.Config{JWTSecret: testSecret})
	userID := uuid.New()

	expired, err := service.IssueToken(userID, -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewTokenService(config.Config{JWTSecret: "a-completely-different-signing-secret"}).
		IssueToken(userID, time.Hour)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TOKEN_ISSUER,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TOKEN_ISSUER,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.token"},
		{name: "expired", token: expired},
		{name: "wrong key", token: otherKey},
		{name: "alg none", token: noneAlg},
		{name: "bad userId claim", token: badSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, types.ErrAuthorization)
		})
	}
}
