package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/painel-financeiro/painel/internal/utils"
	"github.com/painel-financeiro/painel/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookie = CookieConfig{Name: "painel_session"}

func newAuthRouter(service Service) *mux.Router {
	handler := NewHandler(service, testCookie)
	router := mux.NewRouter()
	router.Use(SessionMiddleware(service, testCookie))
	router.HandleFunc("/api/auth/login", handler.Login).Methods("POST")
	router.HandleFunc("/api/auth/logout", handler.Logout).Methods("POST")
	router.HandleFunc("/api/auth/session", handler.CurrentSession).Methods("GET")
	protected := router.PathPrefix("/api/private").Subrouter()
	protected.Use(RequireSession)
	protected.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		userId, _ := CurrentUserId(r.Context())
		_, _ = w.Write([]byte(userId))
	})
	return router
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == testCookie.Name {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", testCookie.Name)
	return nil
}

func TestHandler_LoginFlow(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "42", "exp": testNow.Add(time.Hour).Unix()})
	client, _ := fakeUpstream(t, http.StatusCreated, map[string]string{"access_token": token})
	clock := &utils.MockClock{FixedNow: testNow}
	router := newAuthRouter(NewService(NewMemoryTokenStore(clock), client, clock, time.Hour))

	// login
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"ana@example.com","password":"secret1"}`)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cookie := sessionCookie(t, rr)
	assert.True(t, cookie.HttpOnly)
	assert.NotContains(t, rr.Body.String(), token)

	// session
	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var session Session
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&session))
	assert.Equal(t, "42", session.UserId)

	// protected route
	req = httptest.NewRequest("GET", "/api/private", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "42", rr.Body.String())

	// logout
	req = httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, -1, sessionCookie(t, rr).MaxAge)

	// stale cookie
	req = httptest.NewRequest("GET", "/api/private", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_Login(t *testing.T) {
	t.Run("should answer 400 with the failing fields", func(t *testing.T) {
		router := newAuthRouter(NewService(NewMemoryTokenStore(utils.SystemClock{}), nil, utils.SystemClock{}, time.Hour))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"","password":"1"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var body loginErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, []string{"required"}, body.Fields["email"])
		assert.Equal(t, []string{"minlength"}, body.Fields["password"])
	})

	t.Run("should answer 401 for wrong credentials", func(t *testing.T) {
		client, _ := fakeUpstream(t, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		router := newAuthRouter(NewService(NewMemoryTokenStore(utils.SystemClock{}), client, utils.SystemClock{}, time.Hour))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email":"ana@example.com","password":"wrong-one"}`)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("should answer 502 when upstream is down", func(t *testing.T) {
		client := upstream.NewClient("http://127.0.0.1:1", upstream.Anonymous{})
		router := newAuthRouter(NewService(NewMemoryTokenStore(utils.SystemClock{}), client, utils.SystemClock{}, time.Hour))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest("POST", "/api/auth/login",
			strings.NewReader(`{"email":"ana@example.com","password":"secret1"}`)))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestBearerClients(t *testing.T) {
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()
	store := NewMemoryTokenStore(&utils.MockClock{FixedNow: testNow})
	require.NoError(t, store.Set(context.Background(), "s1", StoredToken{AccessToken: "abc", UserId: "42"}))
	client := upstream.NewClient(server.URL, NewBearerClients(store, nil, 5*time.Second))

	t.Run("should send the session token as bearer", func(t *testing.T) {
		ctx := WithSession(context.Background(), Session{Id: "s1", UserId: "42"})

		err := client.Do(ctx, http.MethodGet, "/cartoes", nil, nil, &[]any{})

		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", authorization)
	})

	t.Run("should refuse calls without a session", func(t *testing.T) {
		err := client.Do(context.Background(), http.MethodGet, "/cartoes", nil, nil, nil)

		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("should refuse calls for a forgotten session", func(t *testing.T) {
		ctx := WithSession(context.Background(), Session{Id: "gone"})

		err := client.Do(ctx, http.MethodGet, "/cartoes", nil, nil, nil)

		assert.ErrorIs(t, err, ErrUnauthenticated)
		status, _, ok := upstream.StatusOf(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
