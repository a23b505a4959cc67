package handlers

import (
	"fmt"
	"net/http"
	"time"

	"cakeshop/internal/common/httpx"
	"cakeshop/internal/microservices/order/domain/dto"
	"cakeshop/internal/microservices/order/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderHandler struct {
	service service.OrderServiceInterface
	export  service.ExportServiceInterface
}

func NewOrderHandler(s service.OrderServiceInterface, e service.ExportServiceInterface) *OrderHandler {
	return &OrderHandler{service: s, export: e}
}

func (oh *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	resp, err := oh.service.AddOrder(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"id": resp.ID, "total": resp.Total})
}

func (oh *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id_order")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.OrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if _, err := oh.service.UpdateOrder(r.Context(), id, req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"message":  "order updated",
		"id_order": id,
	})
}

func (oh *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id_order")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.StatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if _, err := oh.service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"message":  "status updated",
		"id_order": id,
		"status":   req.Status,
	})
}

func (oh *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id_order")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	order, err := oh.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"order": order})
}

func (oh *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oh.service.ListOrders(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"orders": orders})
}

func (oh *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	raw, err := oh.export.Export(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	name := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
