package service

import (
	"cakeshop/internal/common/logger"
	"cakeshop/internal/config"
	"cakeshop/internal/microservices/notificator/repository"
)

type Service struct {
	NotifierService NotifierServiceInterface
	RelayService    RelayServiceInterface
	TimelineService TimelineServiceInterface
}

// New wires the notifier and the outbox relay. pub may be nil, in which
// case rows are delivered in process.
func New(repo *repository.Repository, pub Publisher, cfg *config.Config, lg *logger.Logger) *Service {
	notifier := NewNotifierService(NewSender(cfg.Mail, lg), cfg.Shop, cfg.Mail.ShopAddress, lg)
	if pub == nil {
		pub = NewDirectPublisher(notifier)
	}
	return &Service{
		NotifierService: notifier,
		RelayService: NewRelayService(repo.OutboxRepo, pub,
			cfg.Notify.RelayInterval, cfg.Notify.BatchSize, cfg.Notify.MaxAttempts, lg),
		TimelineService: NewTimelineService(repo.OutboxRepo),
	}
}
