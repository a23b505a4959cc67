package order

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"cakeshop/internal/common/httpx"
	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
	"cakeshop/internal/microservices/order/domain/dao"
	"cakeshop/internal/microservices/order/handlers"
	"cakeshop/internal/microservices/order/repository"
	"cakeshop/internal/microservices/order/service"
)

// Register mounts the order routes on r. Only order creation is public.
func Register(r *mux.Router, db *sqlx.DB, cfg config.OrderConfig, lg *logger.Logger, guard httpx.Guard) {
	repo := repository.New(db, repository.Options{
		StockPolicy:     dao.StockPolicy(cfg.StockPolicy),
		RequireOpenSlot: cfg.RequireOpenSlot,
	})
	svc := service.New(repo, lg)
	h := handlers.New(svc).OrderHandler

	r.HandleFunc("/api/reservar", h.AddOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/reservar/{id_order}", guard(h.UpdateStatus)).Methods(http.MethodPut)
	r.HandleFunc("/api/orders/{id_order}", guard(h.UpdateOrder)).Methods(http.MethodPut)
	r.HandleFunc("/api/orders/{id_order}", guard(h.GetOrder)).Methods(http.MethodGet)
	r.HandleFunc("/api/list", guard(h.ListOrders)).Methods(http.MethodGet)
	r.HandleFunc("/api/list/export", guard(h.Export)).Methods(http.MethodGet)
}
