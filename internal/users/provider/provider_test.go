package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"playday/pkg/client"
	"playday/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

type fakeValidator struct {
	payload  *idtoken.Payload
	err      error
	audience string
}

func (f *fakeValidator) Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error) {
	f.audience = audience
	return f.payload, f.err
}

func TestGoogle_Verify(t *testing.T) {
	v := &fakeValidator{payload: &idtoken.Payload{
		Subject: "g-123",
		Claims:  map[string]any{"email": "ana@example.com", "email_verified": true, "name": "Ana"},
	}}
	g := &Google{validator: v, clientID: "client-1"}

	id, err := g.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "client-1", v.audience)
	assert.Equal(t, &ExternalIdentity{Provider: model.ProviderGoogle, Subject: "g-123", Email: "ana@example.com", Name: "Ana"}, id)
}

func TestGoogle_Rejections(t *testing.T) {
	tests := []struct {
		name string
		v    *fakeValidator
		want error
	}{
		{"bad token", &fakeValidator{err: errors.New("idtoken: token expired")}, ErrInvalidToken},
		{"no email", &fakeValidator{payload: &idtoken.Payload{Subject: "g", Claims: map[string]any{}}}, ErrMissingEmail},
		{"unverified email", &fakeValidator{payload: &idtoken.Payload{Subject: "g", Claims: map[string]any{"email": "a@b.co", "email_verified": false}}}, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&Google{validator: tt.v}).Verify(context.Background(), "token")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFacebook_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "id,name,email", r.URL.Query().Get("fields"))
		if r.URL.Query().Get("access_token") != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token."}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"fb-9","name":"Ben","email":"ben@example.com"}`))
	}))
	defer srv.Close()

	fb := NewFacebook(client.NewHttpClient(srv.URL))

	id, err := fb.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "fb-9", id.Subject)
	assert.Equal(t, model.ProviderFacebook, id.Provider)

	_, err = fb.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "Invalid OAuth access token.")
}

func TestRegistry_UnknownProvider(t *testing.T) {
	_, err := Registry{}.Verify(context.Background(), "github", "token")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
