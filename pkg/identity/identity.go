// Package identity adapts the external identity provider. The service never
// stores credentials itself; it only verifies bearer tokens and reads the
// stable external identifier and verified-email flag out of them.
package identity

import "context"

// Identity is the verified external identity carried by a bearer token.
type Identity struct {
	ExternalID    string
	Email         string
	EmailVerified bool
}

// Provider verifies bearer tokens issued by the identity provider.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}
