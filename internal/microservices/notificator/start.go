package notificator

import (
	"net/http"

	"github.com/gorilla/mux"

	"cakeshop/internal/common/httpx"
	"cakeshop/internal/microservices/notificator/handlers"
	"cakeshop/internal/microservices/notificator/service"
)

// Register mounts the mail timeline route on r.
func Register(r *mux.Router, svc *service.Service, guard httpx.Guard) {
	h := handlers.New(svc).MailHandler
	r.HandleFunc("/api/orders/{id_order}/mails", guard(h.OrderMails)).Methods(http.MethodGet)
}
