package service

import (
	"cakeshop/internal/common/logger"
	"cakeshop/internal/microservices/order/repository"
)

type Service struct {
	OrderService  OrderServiceInterface
	ExportService ExportServiceInterface
}

func New(repo *repository.Repository, lg *logger.Logger) *Service {
	return &Service{
		OrderService:  NewOrderService(repo.OrderRepo, lg),
		ExportService: NewExportService(repo.OrderRepo),
	}
}
