package auth

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const SessionKey contextKey = "session"

var ErrNoSession = errors.New("session not found")

// Session is the authenticated browser session. The upstream access token itself stays
// in the TokenStore and never leaves the server.
type Session struct {
	Id        string    `json:"-"`
	UserId    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// CurrentSession retrieves the session from the context. Returns ErrNoSession if not present.
func CurrentSession(ctx context.Context) (Session, error) {
	session, ok := ctx.Value(SessionKey).(Session)
	if !ok {
		log.Trace("session not found in context")
		return Session{}, ErrNoSession
	}
	return session, nil
}

// CurrentUserId retrieves the upstream user id of the current session.
func CurrentUserId(ctx context.Context) (string, error) {
	session, err := CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	return session.UserId, nil
}

func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
