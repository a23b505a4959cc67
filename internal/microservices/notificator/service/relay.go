package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"cakeshop/internal/common/logger"
	"cakeshop/internal/connections/rabbitmq"
	"cakeshop/internal/microservices/notificator/domain/dao"
	"cakeshop/internal/microservices/notificator/repository"
)

// Publisher moves one outbox row to its transport.
type Publisher interface {
	Publish(ctx context.Context, msg dao.OutboxMessage) error
}

type brokerPublisher interface {
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

// AMQPPublisher routes outbox rows to the email queue.
type AMQPPublisher struct {
	client brokerPublisher
}

func NewAMQPPublisher(client *rabbitmq.Client) *AMQPPublisher {
	return &AMQPPublisher{client: client}
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg dao.OutboxMessage) error {
	return p.client.Publish(ctx, rabbitmq.NotificationsExchange, rabbitmq.EmailKey, amqp.Publishing{
		ContentType:   "application/json",
		MessageId:     msg.MessageID,
		CorrelationId: strconv.Itoa(msg.OrderID),
		Type:          string(msg.Kind),
		Headers:       amqp.Table{"x-source": "outbox"},
		Body:          msg.Payload,
	})
}

// DirectPublisher skips the broker and sends the mail in process.
type DirectPublisher struct {
	notifier NotifierServiceInterface
}

func NewDirectPublisher(n NotifierServiceInterface) *DirectPublisher {
	return &DirectPublisher{notifier: n}
}

func (p *DirectPublisher) Publish(ctx context.Context, msg dao.OutboxMessage) error {
	var e dao.OrderEmail
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return fmt.Errorf("decode outbox payload: %w", err)
	}
	return p.notifier.Deliver(ctx, e)
}

type RelayServiceInterface interface {
	RelayOnce(ctx context.Context) (repository.RelayStats, error)
	Run(ctx context.Context) error
	Backlog(ctx context.Context) (int, error)
}

type RelayService struct {
	repo        repository.OutboxRepositoryInterface
	pub         Publisher
	interval    time.Duration
	batch       int
	maxAttempts int
	lg          *logger.Logger
}

func NewRelayService(repo repository.OutboxRepositoryInterface, pub Publisher, interval time.Duration, batch, maxAttempts int, lg *logger.Logger) RelayServiceInterface {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 20
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &RelayService{repo: repo, pub: pub, interval: interval, batch: batch, maxAttempts: maxAttempts, lg: lg}
}

func (s *RelayService) RelayOnce(ctx context.Context) (repository.RelayStats, error) {
	return s.repo.Relay(ctx, s.batch, s.maxAttempts, func(ctx context.Context, msg dao.OutboxMessage) error {
		if err := s.pub.Publish(ctx, msg); err != nil {
			s.lg.Warn("outbox_publish_failed", map[string]any{
				"message_id": msg.MessageID,
				"order_id":   msg.OrderID,
				"attempt":    msg.Attempts + 1,
				"error":      err.Error(),
			})
			return err
		}
		return nil
	})
}

// Backlog counts outbox rows still waiting for the relay.
func (s *RelayService) Backlog(ctx context.Context) (int, error) {
	return s.repo.Pending(ctx)
}

// Run drains the outbox every interval until ctx is done. A fully published batch
// triggers an immediate next pass.
func (s *RelayService) Run(ctx context.Context) error {
	s.lg.Info("outbox_relay_started", map[string]any{"interval": s.interval.String(), "batch": s.batch})
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		stats, err := s.RelayOnce(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			s.lg.Error("outbox_relay_failed", err, nil)
		case stats.Claimed > 0:
			s.lg.Debug("outbox_relayed", map[string]any{
				"claimed":   stats.Claimed,
				"published": stats.Published,
				"failed":    stats.Failed,
			})
		}
		if err == nil && stats.Published == s.batch {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			s.lg.Info("graceful_shutdown", map[string]any{"component": "outbox_relay"})
			return nil
		case <-t.C:
		}
	}
}
