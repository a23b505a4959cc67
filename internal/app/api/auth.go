package api

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/common/httpx"
	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
)

const (
	sessionName = "cakeshop_admin"
	sessionKey  = "admin"
	sessionTTL  = 12 * time.Hour
)

// Auth guards admin routes with a bcrypt-checked password and a signed
// cookie session. A zero password hash disables it.
type Auth struct {
	hash  []byte
	store *sessions.CookieStore
	lg    *logger.Logger
}

func NewAuth(cfg config.AdminConfig, lg *logger.Logger) *Auth {
	a := &Auth{lg: lg}
	if !cfg.Enabled() {
		return a
	}
	a.hash = []byte(cfg.PasswordHash)
	a.store = sessions.NewCookieStore([]byte(cfg.SessionSecret))
	a.store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return a
}

func (a *Auth) Enabled() bool { return a.store != nil }

func (a *Auth) authenticated(r *http.Request) bool {
	s, err := a.store.Get(r, sessionName)
	if err != nil {
		return false
	}
	ok, _ := s.Values[sessionKey].(bool)
	return ok
}

// Guard returns httpx.Open when auth is disabled.
func (a *Auth) Guard() httpx.Guard {
	if !a.Enabled() {
		return httpx.Open
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !a.authenticated(r) {
				httpx.WriteError(w, apperr.Unauthorized("admin login required"))
				return
			}
			next(w, r)
		}
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	if !a.Enabled() {
		httpx.OK(w, http.StatusOK, map[string]any{"message": "admin auth is disabled"})
		return
	}
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(req.Password)); err != nil {
		a.lg.For(r.Context()).Warn("admin_login_failed", map[string]any{"remoteAddr": r.RemoteAddr})
		httpx.WriteError(w, apperr.Unauthorized("invalid password"))
		return
	}

	s, _ := a.store.New(r, sessionName)
	s.Values[sessionKey] = true
	if err := s.Save(r, w); err != nil {
		httpx.WriteError(w, err)
		return
	}
	a.lg.For(r.Context()).Info("admin_login", nil)
	httpx.OK(w, http.StatusOK, map[string]any{"message": "logged in"})
}

func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if a.Enabled() {
		s, _ := a.store.Get(r, sessionName)
		s.Options.MaxAge = -1
		delete(s.Values, sessionKey)
		if err := s.Save(r, w); err != nil {
			httpx.WriteError(w, err)
			return
		}
	}
	httpx.OK(w, http.StatusOK, map[string]any{"message": "logged out"})
}

// Session reports whether the caller holds an admin session.
func (a *Auth) Session(w http.ResponseWriter, r *http.Request) {
	ok := !a.Enabled() || a.authenticated(r)
	httpx.OK(w, http.StatusOK, map[string]any{"authenticated": ok, "auth_enabled": a.Enabled()})
}
