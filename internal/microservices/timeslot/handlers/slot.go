package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"cakeshop/internal/common/httpx"
	"cakeshop/internal/microservices/timeslot/domain/dto"
	"cakeshop/internal/microservices/timeslot/service"
)

type SlotHandler struct {
	service service.SlotServiceInterface
}

func NewSlotHandler(s service.SlotServiceInterface) *SlotHandler {
	return &SlotHandler{service: s}
}

func (h *SlotHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slots, err := h.service.ListSlots(r.Context(), q.Get("date"), q.Get("month"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"timeslots": slots})
}

func (h *SlotHandler) ListTimes(w http.ResponseWriter, r *http.Request) {
	times, err := h.service.ListTimes(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"times": times})
}

func (h *SlotHandler) AddTime(w http.ResponseWriter, r *http.Request) {
	var req dto.TimeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	id, err := h.service.AddTime(r.Context(), req.TimeValue)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"id": id, "message": "time added"})
}

func (h *SlotHandler) DeleteTime(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.service.DeleteTime(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"message": "time deleted"})
}

func (h *SlotHandler) ListDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.ListDays(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"days": days})
}

func (h *SlotHandler) BatchOpen(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.service.BatchOpen(r.Context(), req.Dates, req.Times)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("%d slots opened, %d skipped", res.Inserted, res.Skipped),
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
	})
}

func (h *SlotHandler) SaveMonth(w http.ResponseWriter, r *http.Request) {
	var req dto.MonthRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.service.SaveMonth(r.Context(), mux.Vars(r)["month"], req.Days)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"message":  "month saved",
		"removed":  res.Removed,
		"inserted": res.Inserted,
		"skipped":  res.Skipped,
		"groups":   res.Groups,
	})
}

func (h *SlotHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.service.DeleteSlot(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"message": "slot deleted"})
}
