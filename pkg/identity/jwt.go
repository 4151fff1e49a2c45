package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// ErrInvalidToken is returned when a token is malformed, expired, or fails
// signature verification.
var ErrInvalidToken = errors.New("invalid identity token")

// Config holds the settings for the JWT-backed provider.
type Config struct {
	Secret string
}

// JWTProvider verifies HMAC-signed identity tokens. Expected claims: "sub"
// (external id), "email", and "email_verified".
type JWTProvider struct {
	secret []byte
	logger zerolog.Logger
}

// NewJWTProvider constructs a JWT identity provider.
func NewJWTProvider(cfg Config, logger zerolog.Logger) (*JWTProvider, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("identity jwt secret must not be empty")
	}

	return &JWTProvider{
		secret: []byte(cfg.Secret),
		logger: logger.With().Str("component", "identity_provider").Logger(),
	}, nil
}

// VerifyToken validates the token and extracts the external identity. The
// context deadline is honoured: verification is pure CPU work, but callers
// treat this boundary like any other remote identity-provider call.
func (p *JWTProvider) VerifyToken(ctx context.Context, tokenString string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	externalID := stringClaim(claims, "sub")
	if externalID == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		ExternalID:    externalID,
		Email:         stringClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key]; ok {
		if str, ok := value.(string); ok {
			return strings.TrimSpace(str)
		}
	}
	return ""
}

func boolClaim(claims jwt.MapClaims, key string) bool {
	if value, ok := claims[key]; ok {
		switch v := value.(type) {
		case bool:
			return v
		case string:
			return strings.EqualFold(strings.TrimSpace(v), "true")
		}
	}
	return false
}
