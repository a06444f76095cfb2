package auth

import (
	"context"
	"time"
)

// Session is the login state restored from the token on each request.
type Session struct {
	ID       uint
	UserID   string
	IssuedAt time.Time
}

// NewSession builds a Session from decoded claims.
func NewSession(claims TokenClaims) Session {
	return Session{ID: claims.ID, UserID: claims.UserID, IssuedAt: claims.IssuedAt()}
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session attached by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
