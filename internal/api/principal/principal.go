// Package principal threads the authenticated user through a request context.
//
// Two independent slots exist: one filled by the Basic-auth middleware on any
// route, one filled by the Bearer middleware on protected routes. A Basic
// principal never satisfies a route that requires a Bearer token.
package principal

import (
	"context"

	"github.com/fortask/user-service/internal/core/domain"
)

type ctxKey int

const (
	bearerKey ctxKey = iota
	basicKey
)

// WithBearer returns a copy of ctx carrying the user resolved from a bearer token.
func WithBearer(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, bearerKey, u)
}

// Bearer returns the user resolved from a bearer token, if any.
func Bearer(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(bearerKey).(*domain.User)
	return u, ok && u != nil
}

// WithBasic returns a copy of ctx carrying the user resolved from Basic credentials.
func WithBasic(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, basicKey, u)
}

// Basic returns the user resolved from Basic credentials, if any.
func Basic(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(basicKey).(*domain.User)
	return u, ok && u != nil
}
