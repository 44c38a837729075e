package context

import (
	"context"

	"sharebox-go/internal/session"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
)

// GetSessionFromContext returns the visitor session attached by the session
// middleware, or nil outside of it.
func GetSessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// WithSession adds the visitor session to the context
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
