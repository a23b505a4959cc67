package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
	notifysvc "cakeshop/internal/microservices/notificator/service"
)

const secret = "0123456789abcdef0123456789abcdef"

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

type fakeBroker struct{ err error }

func (f fakeBroker) Ping() error { return f.err }

type fakeBacklog struct {
	n   int
	err error
}

func (f fakeBacklog) Backlog(ctx context.Context) (int, error) { return f.n, f.err }

func quiet(t *testing.T) *logger.Logger {
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return logger.New("api-test")
}

func testRouter(t *testing.T, password string) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Uploads.Dir = t.TempDir()
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.Admin = config.AdminConfig{PasswordHash: string(hash), SessionSecret: secret}
	}
	lg := quiet(t)
	return NewRouter(cfg, nil, nil, &notifysvc.Service{}, NewAuth(cfg.Admin, lg), lg)
}

func send(t *testing.T, h http.Handler, method, url, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestGuardedRoutesNeedSession(t *testing.T) {
	h := testRouter(t, "s3cret")

	for _, tc := range []struct{ method, url string }{
		{http.MethodPost, "/api/cake"},
		{http.MethodDelete, "/api/cake/1"},
		{http.MethodGet, "/api/list"},
		{http.MethodGet, "/api/list/export"},
		{http.MethodPut, "/api/reservar/3"},
		{http.MethodPut, "/api/orders/3"},
		{http.MethodGet, "/api/orders/3/mails"},
		{http.MethodPost, "/api/timeslots/batch"},
		{http.MethodPut, "/api/timeslots/month/2024-05"},
		{http.MethodDelete, "/api/timeslots/times/7"},
	} {
		rec, body := send(t, h, tc.method, tc.url, "{}")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.url)
		assert.Equal(t, false, body["success"])
	}
}

func TestLoginLogout(t *testing.T) {
	h := testRouter(t, "s3cret")

	rec, _ := send(t, h, http.MethodPost, "/api/admin/login", `{"password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := send(t, h, http.MethodPost, "/api/admin/login", `{"password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	_, body = send(t, h, http.MethodGet, "/api/admin/session", "", cookies...)
	assert.Equal(t, true, body["authenticated"])

	rec, _ = send(t, h, http.MethodPost, "/api/admin/logout", "", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.True(t, cleared[0].MaxAge < 0)

	_, body = send(t, h, http.MethodGet, "/api/admin/session", "")
	assert.Equal(t, false, body["authenticated"])
}

func TestAuthDisabled(t *testing.T) {
	h := testRouter(t, "")

	_, body := send(t, h, http.MethodGet, "/api/admin/session", "")
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, false, body["auth_enabled"])

	rec, _ := send(t, h, http.MethodPost, "/api/admin/login", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = send(t, h, http.MethodPut, "/api/reservar/abc", `{"status":"c"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	rec, body := send(t, testRouter(t, ""), http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", body["error"])
}

func health(c Checks) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	Health(c)(rec, httptest.NewRequest(http.MethodGet, "/api/test", nil))
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, body := health(Checks{DB: fakePinger{}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "database connection ok")
	assert.Equal(t, "disabled", body["broker"])
	assert.NotContains(t, body, "outbox_pending")

	rec, _ = health(Checks{DB: fakePinger{err: errors.New("connection refused")}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestHealthBrokerAndBacklog(t *testing.T) {
	rec, body := health(Checks{DB: fakePinger{}, Broker: fakeBroker{}, Outbox: fakeBacklog{n: 3}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["broker"])
	assert.EqualValues(t, 3, body["outbox_pending"])

	rec, _ = health(Checks{DB: fakePinger{}, Broker: fakeBroker{err: errors.New("rabbitmq connection is closed")}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "rabbitmq connection is closed")

	rec, _ = health(Checks{DB: fakePinger{}, Outbox: fakeBacklog{err: errors.New("count pending outbox rows")}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
