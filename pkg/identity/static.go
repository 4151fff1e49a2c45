package identity

import "context"

// StaticProvider resolves tokens from a fixed map. It exists for tests and
// local development where no real identity provider is reachable.
type StaticProvider struct {
	tokens map[string]Identity
}

// NewStaticProvider builds a provider backed by the supplied token map.
func NewStaticProvider(tokens map[string]Identity) *StaticProvider {
	copied := make(map[string]Identity, len(tokens))
	for token, id := range tokens {
		copied[token] = id
	}
	return &StaticProvider{tokens: copied}
}

// VerifyToken looks the token up in the static map.
func (p *StaticProvider) VerifyToken(ctx context.Context, token string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	id, ok := p.tokens[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	return id, nil
}
