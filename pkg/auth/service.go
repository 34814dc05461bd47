package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/internal/validation"
	"github.com/painel-financeiro/painel/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnauthenticated    = upstream.ErrUnauthenticated
	ErrInvalidCredentials = errors.New("invalid e-mail or password")
	ErrInvalidLogin       = errors.New("invalid login request")
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Validate reports the failing fields: "email" and "password".
func (c Credentials) Validate() map[string][]string {
	return validation.Struct(c)
}

type LoginError struct {
	Fields map[string][]string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("invalid login request: %v", e.Fields)
}

func (e *LoginError) Is(target error) bool {
	return target == ErrInvalidLogin
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type Service interface {
	Login(ctx context.Context, credentials Credentials) (Session, error)
	Logout(ctx context.Context, sessionId string) error
	Session(ctx context.Context, sessionId string) (Session, error)
}

type ServiceImpl struct {
	store  TokenStore
	client *upstream.Client
	clock  utils.Clock
	ttl    time.Duration
}

// NewService creates the login service. ttl bounds sessions whose token carries no
// expiry.
func NewService(store TokenStore, client *upstream.Client, clock utils.Clock, ttl time.Duration) *ServiceImpl {
	return &ServiceImpl{
		store:  store,
		client: client,
		clock:  clock,
		ttl:    ttl,
	}
}

func (s *ServiceImpl) Login(ctx context.Context, credentials Credentials) (Session, error) {
	if errs := credentials.Validate(); len(errs) > 0 {
		return Session{}, &LoginError{Fields: errs}
	}

	var response loginResponse
	err := s.client.Do(ctx, http.MethodPost, "/auth/login", nil, upstream.JSON(credentials), &response)
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			log.Debugf("login rejected for %s", credentials.Email)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if response.AccessToken == "" {
		log.Warnf("login for %s answered without an access token", credentials.Email)
		return Session{}, ErrInvalidCredentials
	}

	claims, err := ParseClaims(response.AccessToken)
	if err != nil {
		log.Errorf("failed to read access token claims: %v", err)
		return Session{}, err
	}

	expiresAt := claims.ExpiresAt
	if expiresAt.IsZero() && s.ttl > 0 {
		expiresAt = s.clock.Now().Add(s.ttl)
	}
	email := claims.Email
	if email == "" {
		email = credentials.Email
	}

	session := Session{
		Id:        uuid.NewString(),
		UserId:    claims.UserId,
		Email:     email,
		ExpiresAt: expiresAt,
	}
	err = s.store.Set(ctx, session.Id, StoredToken{
		AccessToken: response.AccessToken,
		UserId:      session.UserId,
		Email:       session.Email,
		ExpiresAt:   session.ExpiresAt,
	})
	if err != nil {
		return Session{}, err
	}
	log.Infof("user %s logged in", session.UserId)
	return session, nil
}

func (s *ServiceImpl) Logout(ctx context.Context, sessionId string) error {
	return s.store.Clear(ctx, sessionId)
}

func (s *ServiceImpl) Session(ctx context.Context, sessionId string) (Session, error) {
	token, err := s.store.Get(ctx, sessionId)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Id:        sessionId,
		UserId:    token.UserId,
		Email:     token.Email,
		ExpiresAt: token.ExpiresAt,
	}, nil
}
