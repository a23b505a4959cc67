package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/common/logger"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apperr.NotFound("cake not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "cake not found", body["error"])

	rec = httptest.NewRecorder()
	WriteError(rec, errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "connection refused", decodeBody(t, rec)["error"])
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusCreated, map[string]any{"id": 12})

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 12, body["id"])
}

func TestPathID(t *testing.T) {
	r := mux.NewRouter()
	var got int
	var gotErr error
	r.HandleFunc("/x/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = PathID(r, "id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, 42, got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/abc", nil))
	assert.True(t, apperr.Is(gotErr, apperr.KindValidation))
}

func TestDecodeRejectsBadJSON(t *testing.T) {
	var v map[string]any
	err := Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")), &v)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestMiddlewareSetsRequestIDAndRecovers(t *testing.T) {
	lg := logger.New("test")
	h := LogMiddleware(lg)(Recover(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}
