package auth

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/painel-financeiro/painel/internal/rest"
	log "github.com/sirupsen/logrus"
)

// CookieConfig describes the browser cookie carrying the session id.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) read(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c CookieConfig) write(w http.ResponseWriter, session Session) {
	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    session.Id,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !session.ExpiresAt.IsZero() {
		cookie.Expires = session.ExpiresAt
	}
	http.SetCookie(w, cookie)
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionMiddleware puts the session named by the cookie into the request context.
// Requests without a valid session pass through anonymous.
func SessionMiddleware(service Service, cookie CookieConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionId := cookie.read(r)
			if sessionId == "" {
				next.ServeHTTP(w, r)
				return
			}
			session, err := service.Session(r.Context(), sessionId)
			if err != nil {
				if errors.Is(err, ErrSessionNotFound) {
					log.Debugf("session cookie does not match a session, clearing it")
					cookie.clear(w)
				} else {
					log.Errorf("failed to get session: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireSession answers 401 unless a session is in the context.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := CurrentSession(r.Context()); err != nil {
			rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
