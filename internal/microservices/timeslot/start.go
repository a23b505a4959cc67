package timeslot

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"cakeshop/internal/common/httpx"
	"cakeshop/internal/common/logger"
	"cakeshop/internal/microservices/timeslot/handlers"
	"cakeshop/internal/microservices/timeslot/repository"
	"cakeshop/internal/microservices/timeslot/service"
)

// Register mounts the time-slot routes on r. Reads stay public so the
// storefront can offer pickup slots.
func Register(r *mux.Router, db *sqlx.DB, lg *logger.Logger, guard httpx.Guard) {
	repo := repository.New(db)
	svc := service.New(repo, lg)
	h := handlers.New(svc).SlotHandler

	s := r.PathPrefix("/api/timeslots").Subrouter()
	s.HandleFunc("/", h.ListSlots).Methods(http.MethodGet)
	s.HandleFunc("/times", h.ListTimes).Methods(http.MethodGet)
	s.HandleFunc("/times", guard(h.AddTime)).Methods(http.MethodPost)
	s.HandleFunc("/times/{id}", guard(h.DeleteTime)).Methods(http.MethodDelete)
	s.HandleFunc("/days", h.ListDays).Methods(http.MethodGet)
	s.HandleFunc("/batch", guard(h.BatchOpen)).Methods(http.MethodPost)
	s.HandleFunc("/month/{month}", guard(h.SaveMonth)).Methods(http.MethodPut)
	s.HandleFunc("/{id}", guard(h.DeleteSlot)).Methods(http.MethodDelete)
}
