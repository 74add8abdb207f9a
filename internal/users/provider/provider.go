package provider

import (
	"context"
	"errors"
)

var (
	ErrUnknownProvider = errors.New("unknown sign-in provider")
	ErrInvalidToken    = errors.New("provider rejected the token")
	ErrMissingEmail    = errors.New("provider did not share an email address")
)

// ExternalIdentity is the account a provider vouched for.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// Verifier exchanges a provider token for the identity behind it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*ExternalIdentity, error)
}

// Registry maps provider names to verifiers.
type Registry map[string]Verifier

func (r Registry) Verify(ctx context.Context, provider, token string) (*ExternalIdentity, error) {
	v, ok := r[provider]
	if !ok || v == nil {
		return nil, ErrUnknownProvider
	}
	return v.Verify(ctx, token)
}
