package user

import (
	"context"

	"github.com/frahmantamala/clearance-management/internal"
)

// NewContext stores the resolved caller identity; the auth middleware is the
// only writer.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, internal.ContextUserKey, u)
}

// FromContext returns the authenticated user placed in the context by the
// auth middleware.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(internal.ContextUserKey).(*User)
	return u, ok
}
