package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/painel-financeiro/painel/internal/utils"
	log "github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("session token not found")

// StoredToken is the upstream access token of one browser session.
type StoredToken struct {
	AccessToken string
	UserId      string
	Email       string
	ExpiresAt   time.Time
}

func (t StoredToken) expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// TokenStore keeps access tokens on the server, keyed by session id. Get returns
// ErrSessionNotFound for unknown or expired sessions.
type TokenStore interface {
	Get(ctx context.Context, sessionId string) (StoredToken, error)
	Set(ctx context.Context, sessionId string, token StoredToken) error
	Clear(ctx context.Context, sessionId string) error
}

type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]StoredToken
	clock  utils.Clock
}

func NewMemoryTokenStore(clock utils.Clock) *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]StoredToken),
		clock:  clock,
	}
}

func (s *MemoryTokenStore) Get(ctx context.Context, sessionId string) (StoredToken, error) {
	s.mu.RLock()
	token, ok := s.tokens[sessionId]
	s.mu.RUnlock()
	if !ok {
		return StoredToken{}, ErrSessionNotFound
	}
	if token.expired(s.clock.Now()) {
		log.Debugf("session %s expired at %s", sessionId, token.ExpiresAt)
		_ = s.Clear(ctx, sessionId)
		return StoredToken{}, ErrSessionNotFound
	}
	return token, nil
}

func (s *MemoryTokenStore) Set(ctx context.Context, sessionId string, token StoredToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionId] = token
	return nil
}

func (s *MemoryTokenStore) Clear(ctx context.Context, sessionId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionId)
	return nil
}
