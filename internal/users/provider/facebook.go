package provider

import (
	"context"
	"fmt"
	"net/url"

	"playday/pkg/client"
	"playday/pkg/model"
)

type graphUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Facebook resolves user access tokens through the Graph API /me endpoint.
type Facebook struct {
	graph *client.HttpClient
}

func NewFacebook(graph *client.HttpClient) *Facebook {
	return &Facebook{graph: graph}
}

func (f *Facebook) Verify(ctx context.Context, token string) (*ExternalIdentity, error) {
	resp, err := f.graph.GET(ctx, "/me", url.Values{
		"fields":       {"id,name,email"},
		"access_token": {token},
	})
	if err != nil {
		return nil, fmt.Errorf("facebook graph request failed: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, client.GetErrorMessage(resp))
	}

	var user graphUser
	if err := resp.DecodeJSON(&user); err != nil {
		return nil, fmt.Errorf("failed to decode facebook profile: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}
	if user.Email == "" {
		return nil, ErrMissingEmail
	}

	return &ExternalIdentity{
		Provider: model.ProviderFacebook,
		Subject:  user.ID,
		Email:    user.Email,
		Name:     user.Name,
	}, nil
}
