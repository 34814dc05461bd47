package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/painel-financeiro/painel/internal/utils"
	log "github.com/sirupsen/logrus"
)

// PgTokenStore keeps session tokens in the session_token table so sessions survive
// restarts and are shared between instances.
type PgTokenStore struct {
	db    *pgxpool.Pool
	clock utils.Clock
}

func NewPgTokenStore(db *pgxpool.Pool, clock utils.Clock) *PgTokenStore {
	return &PgTokenStore{db: db, clock: clock}
}

func (s *PgTokenStore) Get(ctx context.Context, sessionId string) (StoredToken, error) {
	var token StoredToken
	var expiresAt sql.NullTime
	err := s.db.QueryRow(ctx,
		"SELECT access_token, user_id, email, expires_at FROM session_token WHERE session_id = $1",
		sessionId,
	).Scan(&token.AccessToken, &token.UserId, &token.Email, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredToken{}, ErrSessionNotFound
	}
	if err != nil {
		log.Errorf("failed to read session token: %v", err)
		return StoredToken{}, fmt.Errorf("failed to read session token: %w", err)
	}
	if expiresAt.Valid {
		token.ExpiresAt = expiresAt.Time
	}
	if token.expired(s.clock.Now()) {
		log.Debugf("session %s expired at %s", sessionId, token.ExpiresAt)
		if err := s.Clear(ctx, sessionId); err != nil {
			return StoredToken{}, err
		}
		return StoredToken{}, ErrSessionNotFound
	}
	return token, nil
}

func (s *PgTokenStore) Set(ctx context.Context, sessionId string, token StoredToken) error {
	var expiresAt *time.Time
	if !token.ExpiresAt.IsZero() {
		expiresAt = &token.ExpiresAt
	}
	const upsert = `
		INSERT INTO session_token (session_id, access_token, user_id, email, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			user_id = EXCLUDED.user_id,
			email = EXCLUDED.email,
			expires_at = EXCLUDED.expires_at`
	_, err := s.db.Exec(ctx, upsert, sessionId, token.AccessToken, token.UserId, token.Email, expiresAt, s.clock.Now())
	if err != nil {
		log.Errorf("failed to store session token: %v", err)
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

func (s *PgTokenStore) Clear(ctx context.Context, sessionId string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM session_token WHERE session_id = $1", sessionId)
	if err != nil {
		log.Errorf("failed to delete session token: %v", err)
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	return nil
}

// DeleteExpired removes every token that expired before now.
func (s *PgTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM session_token WHERE expires_at IS NOT NULL AND expires_at <= $1", s.clock.Now())
	if err != nil {
		log.Errorf("failed to delete expired session tokens: %v", err)
		return 0, fmt.Errorf("failed to delete expired session tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
