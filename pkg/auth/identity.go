package auth

import (
	"context"
	"time"

	"playday/pkg/model"
)

type contextKey struct{}

// Identity is the caller as resolved from a verified token. It is a value
// snapshot: handlers read it from the request context and never mutate it.
type Identity struct {
	UserID    string
	Email     string
	Role      model.Role
	TokenID   string
	ExpiresAt time.Time
}

// IsOwner reports whether the caller signed up as a field owner.
func (i Identity) IsOwner() bool {
	return i.Role == model.RoleOwner
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the caller's identity; ok is false for anonymous requests.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
