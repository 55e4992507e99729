// If you are AI: This file defines the authenticated caller identity and its context plumbing.

package auth

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized is returned when a request carries no valid token.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrForbidden is returned when the caller lacks the required privilege.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrInvalidCredentials is returned for unknown users, wrong passwords and malformed input.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// Identity is the caller attached to a request.
// UserID doubles as the producer id recorded on streams the caller creates.
type Identity struct {
	UserID uint64
	Name   string
	Admin  bool
}

// Anonymous is the identity of every request when authentication is disabled.
// It holds producer id 0 and full privileges.
var Anonymous = Identity{UserID: 0, Name: "anonymous", Admin: true}

// identityKey is the context key for Identity.
type identityKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext extracts the identity set by the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
