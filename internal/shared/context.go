package shared

import (
	"context"

	"github.com/google/uuid"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ActorID resolves the acting user from the request session.
// Returns ErrUnauthenticated when no signed-in user is present.
func ActorID(ctx context.Context) (uuid.UUID, error) {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(sess.User())
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}
