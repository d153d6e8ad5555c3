package access

import (
	"context"
	"net/http"
	"strconv"

	"giftworks/internal/core/apperror"
	appctx "giftworks/internal/core/context"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
	"giftworks/pkg/logger"
)

// Credential messages. Bad signature, expired token, missing subject and
// unknown user all map to the same generic message so nothing about account
// existence can be probed.
const (
	msgNotAuthenticated   = "not authenticated"
	msgInvalidCredentials = "could not validate credentials"
	msgDemoReadOnly       = "This is a demo organization. Write actions are disabled."
)

// TokenVerifier validates a bearer credential and returns its claims.
// Claims include at least a subject and an expiry; signing and verification
// mechanics live behind this boundary.
type TokenVerifier interface {
	Verify(token string) (*identity.Claims, error)
}

// Resolver turns a bearer credential into a Context: verify the token, load
// the user, load their organization, and enforce demo read-only mode.
type Resolver struct {
	verifier TokenVerifier
	users    identity.Repository
	orgs     org.Repository
}

// NewResolver creates a Resolver.
func NewResolver(verifier TokenVerifier, users identity.Repository, orgs org.Repository) *Resolver {
	return &Resolver{verifier: verifier, users: users, orgs: orgs}
}

// Resolve validates the credential and assembles the per-request Context.
// The returned context.Context carries the actor (user id, redacted email)
// for ambient logging plus the Context itself. Resolution has no other side
// effects; resolving the same token twice yields identical results.
//
// method is the request's HTTP method, needed for demo-org enforcement.
func (r *Resolver) Resolve(ctx context.Context, token, method string) (context.Context, *Context, error) {
	if token == "" {
		logger.Warn(ctx, "unauthorized_access", "reason", "missing_token")
		return ctx, nil, apperror.NewUnauthorized(msgNotAuthenticated)
	}

	claims, err := r.verifier.Verify(token)
	if err != nil {
		logger.Warn(ctx, "unauthorized_access", "reason", "invalid_token")
		return ctx, nil, apperror.NewUnauthorized(msgInvalidCredentials)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.Subject == "" {
		logger.Warn(ctx, "unauthorized_access", "reason", "bad_subject")
		return ctx, nil, apperror.NewUnauthorized(msgInvalidCredentials)
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Warn(ctx, "unauthorized_access", "reason", "user_not_found", "user_id", userID)
			return ctx, nil, apperror.NewUnauthorized(msgInvalidCredentials)
		}
		return ctx, nil, err
	}

	// Bind the actor for the remainder of the request. Email is redacted
	// before it enters the logging context.
	actor := &appctx.Actor{
		UserID: user.ID,
		Email:  appctx.RedactEmail(user.Email),
	}
	if user.OrgID != nil {
		actor.OrgID = user.OrgID.String()
	}
	ctx = appctx.WithActor(ctx, actor)

	var organization *org.Organization
	if user.OrgID != nil {
		organization, err = r.orgs.GetByID(ctx, *user.OrgID)
		if err != nil {
			if !apperror.IsNotFound(err) {
				return ctx, nil, err
			}
			// Dangling org reference: treat as no organization.
			organization = nil
		}
	}

	// Demo organizations are read-only for every member regardless of role.
	if organization != nil && organization.IsDemo && !isSafeMethod(method) {
		logger.Warn(ctx, "access_denied", "reason", "demo_org_write", "org_id", organization.ID.String())
		return ctx, nil, apperror.NewForbidden(msgDemoReadOnly)
	}

	rc := &Context{
		User:        user,
		Org:         organization,
		Role:        user.Role,
		Permissions: []string{},
	}
	return WithContext(ctx, rc), rc, nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
