package catalog

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"

	"cakeshop/internal/common/httpx"
	"cakeshop/internal/config"
	"cakeshop/internal/microservices/catalog/handlers"
	"cakeshop/internal/microservices/catalog/repository"
	"cakeshop/internal/microservices/catalog/service"
)

// Register mounts the cake routes and the /image/ file server on r.
func Register(r *mux.Router, db *sqlx.DB, uploads config.UploadsConfig, guard httpx.Guard) {
	repo := repository.New(db)
	svc := service.New(repo, uploads)
	h := handlers.New(svc).CakeHandler

	r.HandleFunc("/api/cake", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/cake", guard(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/api/cake/upload", guard(h.Upload)).Methods(http.MethodPost)
	r.HandleFunc("/api/cake/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/cake/{id}", guard(h.Update)).Methods(http.MethodPut)
	r.HandleFunc("/api/cake/{id}", guard(h.Delete)).Methods(http.MethodDelete)

	r.PathPrefix("/image/").Handler(
		http.StripPrefix("/image/", http.FileServer(http.Dir(uploads.Dir)))).Methods(http.MethodGet)
}
