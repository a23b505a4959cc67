package handlers

import "cakeshop/internal/microservices/catalog/service"

type Handler struct {
	CakeHandler *CakeHandler
}

func New(s *service.Service) *Handler {
	return &Handler{
		CakeHandler: NewCakeHandler(s.CakeService, s.UploadService),
	}
}
