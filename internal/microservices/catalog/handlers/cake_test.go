package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/microservices/catalog/domain/dao"
	"cakeshop/internal/microservices/catalog/domain/dto"
	"cakeshop/internal/microservices/catalog/service"
)

var (
	_ service.CakeServiceInterface   = &mockCakeService{}
	_ service.UploadServiceInterface = &mockUploads{}
)

type mockCakeService struct {
	cakes   map[int]dao.Cake
	created dto.CakeRequest
}

func (m *mockCakeService) List(ctx context.Context) ([]dao.Cake, error) {
	out := []dao.Cake{}
	for _, c := range m.cakes {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCakeService) Get(ctx context.Context, id int) (dao.Cake, error) {
	c, ok := m.cakes[id]
	if !ok {
		return dao.Cake{}, apperr.NotFound("cake %d not found", id)
	}
	return c, nil
}

func (m *mockCakeService) Create(ctx context.Context, req dto.CakeRequest) (dao.Cake, error) {
	if req.Name == "" {
		return dao.Cake{}, apperr.Validation("cake name is required")
	}
	m.created = req
	return dao.Cake{ID: 10, Name: req.Name, Sizes: []dao.CakeSize{}}, nil
}

func (m *mockCakeService) Update(ctx context.Context, id int, req dto.CakeRequest) (dao.Cake, error) {
	return dao.Cake{ID: id, Name: req.Name}, nil
}

func (m *mockCakeService) Delete(ctx context.Context, id int) error {
	if _, ok := m.cakes[id]; !ok {
		return apperr.NotFound("cake %d not found", id)
	}
	return nil
}

type mockUploads struct{ saved string }

func (m *mockUploads) SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	m.saved = header.Filename
	return "cake-fixed.png", nil
}
func (m *mockUploads) MaxBytes() int64 { return 1 << 20 }
func (m *mockUploads) Dir() string     { return "" }

func setup(t *testing.T) (*mux.Router, *mockCakeService, *mockUploads) {
	t.Helper()
	svc := &mockCakeService{cakes: map[int]dao.Cake{1: {ID: 1, Name: "Shortcake"}}}
	up := &mockUploads{}
	h := NewCakeHandler(svc, up)

	r := mux.NewRouter()
	r.HandleFunc("/api/cake", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/cake", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/cake/upload", h.Upload).Methods(http.MethodPost)
	r.HandleFunc("/api/cake/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/cake/{id}", h.Delete).Methods(http.MethodDelete)
	return r, svc, up
}

func do(t *testing.T, r http.Handler, req *http.Request) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestCakeHandlers(t *testing.T) {
	r, svc, up := setup(t)

	t.Run("get existing", func(t *testing.T) {
		code, body := do(t, r, httptest.NewRequest(http.MethodGet, "/api/cake/1", nil))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Shortcake", body["cake"].(map[string]any)["name"])
	})

	t.Run("get missing", func(t *testing.T) {
		code, body := do(t, r, httptest.NewRequest(http.MethodGet, "/api/cake/99", nil))
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, false, body["success"])
	})

	t.Run("create returns 201", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/cake",
			strings.NewReader(`{"name":"Tart","sizes":[{"size":"M","price":1500,"stock":5}]}`))
		code, body := do(t, r, req)
		assert.Equal(t, http.StatusCreated, code)
		assert.EqualValues(t, 10, body["cake"].(map[string]any)["id"])
		assert.Equal(t, 1500, svc.created.Sizes[0].Price)
	})

	t.Run("create without name", func(t *testing.T) {
		code, body := do(t, r, httptest.NewRequest(http.MethodPost, "/api/cake", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "cake name is required", body["error"])
	})

	t.Run("delete missing", func(t *testing.T) {
		code, _ := do(t, r, httptest.NewRequest(http.MethodDelete, "/api/cake/5", nil))
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("upload", func(t *testing.T) {
		var sb strings.Builder
		mw := multipart.NewWriter(&sb)
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("png"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/cake/upload", strings.NewReader(sb.String()))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		code, body := do(t, r, req)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "cake-fixed.png", body["filename"])
		assert.Equal(t, "photo.png", up.saved)
	})

	t.Run("upload without file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/cake/upload", strings.NewReader(""))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		code, _ := do(t, r, req)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}
