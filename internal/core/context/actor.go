package context

import (
	"context"
	"strings"
)

// Actor is the ambient identity bound by the identity resolver for the
// remainder of a request. It carries only what logging needs; the full
// resolved context lives in the access package.
type Actor struct {
	UserID int64
	// Email is stored pre-redacted. Raw addresses never enter the logging path.
	Email string
	OrgID string
}

type actorKey struct{}

// WithActor binds the resolved actor to the context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns the bound actor, or nil for unauthenticated requests.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// RedactEmail masks the local part of an email address, keeping the first
// character and the domain: johndoe@example.com -> j***@example.com.
func RedactEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
