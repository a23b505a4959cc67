package handlers

import "cakeshop/internal/microservices/notificator/service"

type Handler struct {
	MailHandler *MailHandler
}

func New(s *service.Service) *Handler {
	return &Handler{MailHandler: NewMailHandler(s.TimelineService)}
}
