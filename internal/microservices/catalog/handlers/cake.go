package handlers

import (
	"errors"
	"net/http"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/common/httpx"
	"cakeshop/internal/microservices/catalog/domain/dto"
	"cakeshop/internal/microservices/catalog/service"
)

type CakeHandler struct {
	service service.CakeServiceInterface
	uploads service.UploadServiceInterface
}

func NewCakeHandler(s service.CakeServiceInterface, u service.UploadServiceInterface) *CakeHandler {
	return &CakeHandler{service: s, uploads: u}
}

func (h *CakeHandler) List(w http.ResponseWriter, r *http.Request) {
	cakes, err := h.service.List(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"cakes": cakes})
}

func (h *CakeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	cake, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"cake": cake})
}

func (h *CakeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CakeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	cake, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"cake": cake, "message": "cake created"})
}

func (h *CakeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.CakeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	cake, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"cake": cake, "message": "cake updated"})
}

func (h *CakeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"message": "cake deleted"})
}

// Upload accepts a multipart "image" field.
func (h *CakeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+1<<20)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httpx.WriteError(w, apperr.Validation("image exceeds %d bytes", h.uploads.MaxBytes()))
			return
		}
		httpx.WriteError(w, apperr.Validation("no image was sent"))
		return
	}
	defer file.Close()

	name, err := h.uploads.SaveImage(file, header)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"filename": name,
		"message":  "image uploaded",
	})
}
