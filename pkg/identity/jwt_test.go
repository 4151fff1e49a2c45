package identity

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func testProvider(t *testing.T) *JWTProvider {
	t.Helper()
	provider, err := NewJWTProvider(Config{Secret: testSecret}, zerolog.New(io.Discard))
	require.NoError(t, err)
	return provider
}

func TestNewJWTProviderRequiresSecret(t *testing.T) {
	_, err := NewJWTProvider(Config{}, zerolog.New(io.Discard))
	require.Error(t, err)
}

func TestVerifyTokenExtractsIdentity(t *testing.T) {
	provider := testProvider(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":            "uid-asha",
		"email":          "asha@example.com",
		"email_verified": true,
		"exp":            time.Now().Add(time.Hour).Unix(),
	})

	id, err := provider.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "uid-asha", id.ExternalID)
	require.Equal(t, "asha@example.com", id.Email)
	require.True(t, id.EmailVerified)
}

func TestVerifyTokenStringifiedVerifiedFlag(t *testing.T) {
	provider := testProvider(t)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":            "uid-asha",
		"email_verified": "true",
	})

	id, err := provider.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	require.True(t, id.EmailVerified)
}

func TestVerifyTokenRejectsBadTokens(t *testing.T) {
	provider := testProvider(t)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", signToken(t, "another-secret", jwt.MapClaims{"sub": "uid-asha"})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{"sub": "uid-asha", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"missing subject", signToken(t, testSecret, jwt.MapClaims{"email": "asha@example.com"})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := provider.VerifyToken(context.Background(), tc.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyTokenHonoursContext(t *testing.T) {
	provider := testProvider(t)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "uid-asha"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.VerifyToken(ctx, token)
	require.ErrorIs(t, err, context.Canceled)
}
