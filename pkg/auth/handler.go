package auth

import (
	"errors"
	"net/http"

	"github.com/painel-financeiro/painel/internal/rest"
	"github.com/painel-financeiro/painel/pkg/upstream"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
	cookie  CookieConfig
}

func NewHandler(service Service, cookie CookieConfig) *Handler {
	return &Handler{service: service, cookie: cookie}
}

type loginErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// Login godoc
// @Summary Log in with the upstream credentials
// @Description The upstream access token stays on the server; the browser gets a session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body Credentials true "E-mail and password"
// @Success 200 {object} Session
// @Failure 400 {object} loginErrorResponse "Invalid e-mail or short password"
// @Failure 401 {object} rest.ErrorResponse "Wrong credentials"
// @Router /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var credentials Credentials
	if err := rest.DecodeJSON(r, &credentials); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	log.Debugf("Login attempt for %s", credentials.Email)

	session, err := h.service.Login(r.Context(), credentials)
	if err != nil {
		var loginErr *LoginError
		switch {
		case errors.As(err, &loginErr):
			rest.WriteJSON(w, http.StatusBadRequest, loginErrorResponse{
				Error:  "Please fill in all required fields correctly",
				Fields: loginErr.Fields,
			})
		case errors.Is(err, ErrInvalidCredentials):
			rest.WriteError(w, http.StatusUnauthorized, "Incorrect e-mail or password")
		default:
			if status, message, ok := upstream.StatusOf(err); ok {
				rest.WriteError(w, status, message)
				return
			}
			log.Errorf("login failed: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Login failed, please try again later")
		}
		return
	}

	h.cookie.write(w, session)
	rest.WriteJSON(w, http.StatusOK, session)
}

// Logout godoc
// @Summary Log out and forget the upstream token
// @Tags Auth
// @Success 204
// @Router /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionId := h.cookie.read(r); sessionId != "" {
		if err := h.service.Logout(r.Context(), sessionId); err != nil {
			log.Errorf("failed to log out: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Logout failed")
			return
		}
	}
	h.cookie.clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// CurrentSession godoc
// @Summary Get the logged in session
// @Tags Auth
// @Produce json
// @Success 200 {object} Session
// @Failure 401 {object} rest.ErrorResponse
// @Router /api/auth/session [get]
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := CurrentSession(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	rest.WriteJSON(w, http.StatusOK, session)
}
