package service

import (
	"context"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/microservices/notificator/domain/dao"
	"cakeshop/internal/microservices/notificator/repository"
)

const maxTimelineLimit = 200

type TimelineServiceInterface interface {
	OrderMails(ctx context.Context, orderID, limit, offset int) ([]dao.OutboxMessage, error)
}

type TimelineService struct {
	repo repository.OutboxRepositoryInterface
}

func NewTimelineService(repo repository.OutboxRepositoryInterface) TimelineServiceInterface {
	return &TimelineService{repo: repo}
}

func (s *TimelineService) OrderMails(ctx context.Context, orderID, limit, offset int) ([]dao.OutboxMessage, error) {
	if limit <= 0 || limit > maxTimelineLimit {
		return nil, apperr.Validation("limit must be between 1 and %d", maxTimelineLimit)
	}
	if offset < 0 {
		return nil, apperr.Validation("offset must not be negative")
	}
	return s.repo.ListByOrder(ctx, orderID, limit, offset)
}
