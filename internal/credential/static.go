// Package credential supplies bearer tokens for the outbound service calls.
// Token acquisition (managed identity, token exchange) happens outside the
// pipeline; here the token is simply read from configuration.
package credential

import (
	"context"
	"errors"

	"docex/internal/domain"
	"docex/internal/port"
)

type staticProvider struct {
	token string
}

// NewStaticProvider returns a TokenProvider that hands out a fixed bearer
// token from configuration.
func NewStaticProvider(token string) port.TokenProvider {
	return &staticProvider{token: token}
}

func (p *staticProvider) Token(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", &domain.AuthenticationError{
			Service: "credential",
			Err:     errors.New("no bearer token configured"),
		}
	}
	return p.token, nil
}
