package provider

import (
	"context"
	"fmt"
	"net/http"

	"playday/pkg/model"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

type idTokenValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// Google verifies Google Sign-In ID tokens issued for clientID.
type Google struct {
	validator idTokenValidator
	clientID  string
}

func NewGoogle(ctx context.Context, clientID string) (*Google, error) {
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(http.DefaultClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create google token validator: %w", err)
	}
	return &Google{validator: v, clientID: clientID}, nil
}

func (g *Google) Verify(ctx context.Context, token string) (*ExternalIdentity, error) {
	payload, err := g.validator.Validate(ctx, token, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrMissingEmail
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}
	name, _ := payload.Claims["name"].(string)

	return &ExternalIdentity{
		Provider: model.ProviderGoogle,
		Subject:  payload.Subject,
		Email:    email,
		Name:     name,
	}, nil
}
