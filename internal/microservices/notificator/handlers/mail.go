package handlers

import (
	"net/http"
	"strconv"

	"cakeshop/internal/common/httpx"
	"cakeshop/internal/microservices/notificator/service"
)

type MailHandler struct {
	service service.TimelineServiceInterface
}

func NewMailHandler(s service.TimelineServiceInterface) *MailHandler {
	return &MailHandler{service: s}
}

// OrderMails lists the notification rows of one order with their delivery state.
func (h *MailHandler) OrderMails(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id_order")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	limit := atoiDefault(q.Get("limit"), 50)
	offset := atoiDefault(q.Get("offset"), 0)

	mails, err := h.service.OrderMails(r.Context(), id, limit, offset)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"id_order": id, "mails": mails})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
