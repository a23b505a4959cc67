package service

import (
	"cakeshop/internal/common/logger"
	"cakeshop/internal/microservices/timeslot/repository"
)

type Service struct {
	SlotService SlotServiceInterface
}

func New(repo *repository.Repository, lg *logger.Logger) *Service {
	return &Service{SlotService: NewSlotService(repo.SlotRepo, lg)}
}
