package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

type sessionTokenSource struct {
	ctx       context.Context
	store     TokenStore
	sessionId string
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Get(s.ctx, s.sessionId)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return &oauth2.Token{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		Expiry:      token.ExpiresAt,
	}, nil
}

// TokenSource returns the upstream token of a session. There is no refresh: once the
// token expires the user has to log in again.
func TokenSource(ctx context.Context, store TokenStore, sessionId string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, sessionTokenSource{ctx: ctx, store: store, sessionId: sessionId})
}

// BearerClients hands out HTTP clients that authenticate upstream calls as the
// session found in the request context.
type BearerClients struct {
	store   TokenStore
	base    *http.Client
	timeout time.Duration
}

func NewBearerClients(store TokenStore, base *http.Client, timeout time.Duration) *BearerClients {
	return &BearerClients{store: store, base: base, timeout: timeout}
}

func (c *BearerClients) HTTPClient(ctx context.Context) (*http.Client, error) {
	session, err := CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if c.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	}
	client := oauth2.NewClient(ctx, TokenSource(ctx, c.store, session.Id))
	client.Timeout = c.timeout
	return client, nil
}
