package identity

import (
	"context"

	"github.com/coursemarket/backend/internal/domain"
)

// Identity is the authenticated caller, loaded from the store by the auth
// middleware after token verification. It is threaded through the request
// context as an explicit typed value.
type Identity struct {
	ID    string
	Email string
	Role  domain.Role
}

func (i *Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx with the identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the caller's identity from ctx. Returns nil if the
// request was not authenticated.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
