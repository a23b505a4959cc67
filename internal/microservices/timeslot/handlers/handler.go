package handlers

import "cakeshop/internal/microservices/timeslot/service"

type Handler struct {
	SlotHandler *SlotHandler
}

func New(s *service.Service) *Handler {
	return &Handler{SlotHandler: NewSlotHandler(s.SlotService)}
}
