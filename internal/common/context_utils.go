package common

import (
	"context"

	"authd/internal/models"
)

type contextKey string

const callerKey contextKey = "caller"

// WithCaller attaches the verified caller identity to the context. The value
// is produced once per request by the session middleware; protected handlers
// read it instead of re-validating the token.
func WithCaller(ctx context.Context, user *models.PublicUser) context.Context {
	return context.WithValue(ctx, callerKey, user)
}

// CallerFromContext extracts the verified caller set by the session middleware.
func CallerFromContext(ctx context.Context) (*models.PublicUser, bool) {
	user, ok := ctx.Value(callerKey).(*models.PublicUser)
	return user, ok
}
