package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

// fakeUpstream answers /auth/login with the given status and body.
func fakeUpstream(t *testing.T, status int, body any) (*upstream.Client, *Credentials) {
	t.Helper()
	var received Credentials
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return upstream.NewClient(server.URL, upstream.Anonymous{}), &received
}

func TestServiceImpl_Login(t *testing.T) {
	valid := Credentials{Email: "ana@example.com", Password: "secret1"}

	t.Run("should store the token and open a session", func(t *testing.T) {
		// given
		exp := testNow.Add(2 * time.Hour)
		token := signedToken(t, jwt.MapClaims{"sub": float64(42), "email": "ana@example.com", "exp": exp.Unix()})
		client, received := fakeUpstream(t, http.StatusCreated, map[string]string{"access_token": token})
		store := NewMemoryTokenStore(&utils.MockClock{FixedNow: testNow})
		service := NewService(store, client, &utils.MockClock{FixedNow: testNow}, time.Hour)

		// when
		session, err := service.Login(context.Background(), valid)

		// then
		require.NoError(t, err)
		assert.Equal(t, valid, *received)
		assert.NotEmpty(t, session.Id)
		assert.Equal(t, "42", session.UserId)
		assert.Equal(t, exp.Unix(), session.ExpiresAt.Unix())
		stored, err := store.Get(context.Background(), session.Id)
		require.NoError(t, err)
		assert.Equal(t, token, stored.AccessToken)
	})

	t.Run("should bound sessions without expiry by the ttl", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"id": "7"})
		client, _ := fakeUpstream(t, http.StatusOK, map[string]string{"access_token": token})
		service := NewService(NewMemoryTokenStore(&utils.MockClock{FixedNow: testNow}), client, &utils.MockClock{FixedNow: testNow}, time.Hour)

		session, err := service.Login(context.Background(), valid)

		require.NoError(t, err)
		assert.Equal(t, "7", session.UserId)
		assert.Equal(t, "ana@example.com", session.Email)
		assert.Equal(t, testNow.Add(time.Hour), session.ExpiresAt)
	})

	t.Run("should reject wrong credentials", func(t *testing.T) {
		client, _ := fakeUpstream(t, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		service := NewService(NewMemoryTokenStore(utils.SystemClock{}), client, utils.SystemClock{}, time.Hour)

		_, err := service.Login(context.Background(), valid)

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("should reject an answer without a token", func(t *testing.T) {
		client, _ := fakeUpstream(t, http.StatusOK, map[string]string{})
		service := NewService(NewMemoryTokenStore(utils.SystemClock{}), client, utils.SystemClock{}, time.Hour)

		_, err := service.Login(context.Background(), valid)

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("should pass upstream messages through", func(t *testing.T) {
		client, _ := fakeUpstream(t, http.StatusBadRequest, map[string]any{"message": []string{"email must be an email"}})
		service := NewService(NewMemoryTokenStore(utils.SystemClock{}), client, utils.SystemClock{}, time.Hour)

		_, err := service.Login(context.Background(), valid)

		status, message, ok := upstream.StatusOf(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "email must be an email", message)
	})

	t.Run("should validate before calling upstream", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		defer server.Close()
		service := NewService(NewMemoryTokenStore(utils.SystemClock{}), upstream.NewClient(server.URL, upstream.Anonymous{}), utils.SystemClock{}, time.Hour)

		_, err := service.Login(context.Background(), Credentials{Email: "ana", Password: "12345"})

		require.ErrorIs(t, err, ErrInvalidLogin)
		var loginErr *LoginError
		require.ErrorAs(t, err, &loginErr)
		assert.Equal(t, map[string][]string{"email": {"email"}, "password": {"minlength"}}, loginErr.Fields)
		assert.False(t, called)
	})
}

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name        string
		credentials Credentials
		want        map[string][]string
	}{
		{"valid", Credentials{Email: "a@b.co", Password: "123456"}, map[string][]string{}},
		{"empty", Credentials{}, map[string][]string{"email": {"required"}, "password": {"required"}}},
		{"display name is not an address", Credentials{Email: "Ana <a@b.co>", Password: "123456"}, map[string][]string{"email": {"email"}}},
		{"short password", Credentials{Email: "a@b.co", Password: "12345"}, map[string][]string{"password": {"minlength"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.credentials.Validate())
		})
	}
}

func TestServiceImpl_SessionAndLogout(t *testing.T) {
	clock := &utils.MockClock{FixedNow: testNow}
	store := NewMemoryTokenStore(clock)
	service := NewService(store, nil, clock, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "s1", StoredToken{AccessToken: "t", UserId: "42", ExpiresAt: testNow.Add(time.Minute)}))

	t.Run("should resolve a live session", func(t *testing.T) {
		session, err := service.Session(ctx, "s1")

		require.NoError(t, err)
		assert.Equal(t, Session{Id: "s1", UserId: "42", ExpiresAt: testNow.Add(time.Minute)}, session)
	})

	t.Run("should forget the session on logout", func(t *testing.T) {
		require.NoError(t, service.Logout(ctx, "s1"))

		_, err := service.Session(ctx, "s1")

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestMemoryTokenStore(t *testing.T) {
	t.Run("should expire tokens", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: testNow}
		store := NewMemoryTokenStore(clock)
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, "s1", StoredToken{AccessToken: "t", ExpiresAt: testNow.Add(time.Minute)}))
		require.NoError(t, store.Set(ctx, "s2", StoredToken{AccessToken: "forever"}))

		clock.SetNow(testNow.Add(time.Minute))

		_, err := store.Get(ctx, "s1")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		token, err := store.Get(ctx, "s2")
		require.NoError(t, err)
		assert.Equal(t, "forever", token.AccessToken)
	})
}

func TestParseClaims(t *testing.T) {
	t.Run("should prefer sub and read numeric ids", func(t *testing.T) {
		claims, err := ParseClaims(signedToken(t, jwt.MapClaims{"sub": float64(12), "id": "99", "email": "x@y.z"}))

		require.NoError(t, err)
		assert.Equal(t, "12", claims.UserId)
		assert.Equal(t, "x@y.z", claims.Email)
		assert.True(t, claims.ExpiresAt.IsZero())
	})

	t.Run("should fail without a user id", func(t *testing.T) {
		_, err := ParseClaims(signedToken(t, jwt.MapClaims{"email": "x@y.z"}))

		assert.Error(t, err)
	})

	t.Run("should fail for garbage", func(t *testing.T) {
		_, err := ParseClaims("not-a-token")

		assert.Error(t, err)
	})
}
