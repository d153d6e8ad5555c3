// Package access turns a bearer credential into a fully-resolved, per-request
// authorization context and provides the guards every protected operation
// runs through.
package access

import (
	"context"

	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
)

// Context is the resolved, request-scoped bundle of user + organization +
// role. It is constructed fresh for every request from current database
// state and never cached across requests.
type Context struct {
	User *identity.User
	Org  *org.Organization
	Role identity.Role

	// Permissions is a deliberate extension point. Always empty today;
	// guards must not assume it is populated.
	Permissions []string
}

type contextKey struct{}

// WithContext binds the resolved Context to the request context.
func WithContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// FromContext returns the resolved Context, or nil when the request was not
// authenticated.
func FromContext(ctx context.Context) *Context {
	if v, ok := ctx.Value(contextKey{}).(*Context); ok {
		return v
	}
	return nil
}
