package service

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"cakeshop/internal/common/logger"
	"cakeshop/internal/connections/rabbitmq"
	"cakeshop/internal/microservices/notificator/domain/dao"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrRetry   = errors.New("retry")       // nack(requeue=false), dead-letters into the retry queue
	ErrPark    = errors.New("dead_letter") // copied to the parking queue, then acked
)

type broker interface {
	Consume(queue, consumer string, prefetch int) (*amqp.Channel, <-chan amqp.Delivery, error)
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

type ConsumerServiceInterface interface {
	Run(ctx context.Context) error
}

type ConsumerService struct {
	broker      broker
	notifier    NotifierServiceInterface
	name        string
	prefetch    int
	maxAttempts int
	lg          *logger.Logger
}

func NewConsumerService(client *rabbitmq.Client, notifier NotifierServiceInterface, name string, prefetch, maxAttempts int, lg *logger.Logger) ConsumerServiceInterface {
	return newConsumer(client, notifier, name, prefetch, maxAttempts, lg)
}

func newConsumer(b broker, notifier NotifierServiceInterface, name string, prefetch, maxAttempts int, lg *logger.Logger) *ConsumerService {
	if prefetch <= 0 {
		prefetch = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if name == "" {
		name = "notifier"
	}
	return &ConsumerService{broker: b, notifier: notifier, name: name, prefetch: prefetch, maxAttempts: maxAttempts, lg: lg}
}

func (c *ConsumerService) Run(ctx context.Context) error {
	ch, msgs, err := c.broker.Consume(rabbitmq.EmailQueue, c.name, c.prefetch)
	if err != nil {
		return err
	}
	defer ch.Close()

	closeCh := ch.NotifyClose(make(chan *amqp.Error, 1))
	cancelCh := ch.NotifyCancel(make(chan string, 1))
	go func() {
		for {
			select {
			case e := <-closeCh:
				if e != nil {
					c.lg.Error("amqp_channel_closed", e, map[string]any{"code": e.Code})
				}
				return
			case tag := <-cancelCh:
				if tag != "" {
					c.lg.Warn("consumer_canceled", map[string]any{"tag": tag})
				}
			}
		}
	}()

	c.lg.Info("consumer_started", map[string]any{"queue": rabbitmq.EmailQueue, "prefetch": c.prefetch, "consumer": c.name})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			c.settle(ctx, d, c.process(ctx, d))
		}
	}()

	select {
	case <-ctx.Done():
		c.lg.Info("graceful_shutdown", map[string]any{"consumer": c.name})
		_ = ch.Cancel(c.name, false)
		<-done
		return nil
	case <-done:
		return errors.New("delivery channel closed")
	}
}

func (c *ConsumerService) process(ctx context.Context, d amqp.Delivery) error {
	var e dao.OrderEmail
	if err := json.Unmarshal(d.Body, &e); err != nil {
		c.lg.Warn("mail_payload_invalid", map[string]any{"message_id": d.MessageId, "error": err.Error()})
		return ErrPark
	}
	if !e.Kind.Valid() || e.Email == "" {
		c.lg.Warn("mail_payload_invalid", map[string]any{"message_id": d.MessageId, "kind": e.Kind})
		return ErrPark
	}

	if err := c.notifier.Deliver(ctx, e); err != nil {
		if ctx.Err() != nil {
			return ErrRequeue
		}
		attempt := rabbitmq.DeathCount(d.Headers, rabbitmq.EmailQueue) + 1
		c.lg.Error("mail_send_failed", err, map[string]any{
			"order_id":   e.OrderID,
			"message_id": e.MessageID,
			"attempt":    attempt,
		})
		if attempt >= int64(c.maxAttempts) {
			return ErrPark
		}
		return ErrRetry
	}
	return nil
}

func (c *ConsumerService) settle(ctx context.Context, d amqp.Delivery, err error) {
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrRetry):
		_ = d.Nack(false, false)
	case errors.Is(err, ErrPark):
		if perr := c.park(ctx, d); perr != nil {
			c.lg.Error("mail_park_failed", perr, map[string]any{"message_id": d.MessageId})
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)
	default:
		_ = d.Nack(false, true)
	}
}

func (c *ConsumerService) park(ctx context.Context, d amqp.Delivery) error {
	headers := amqp.Table{"x-parked-by": c.name}
	for k, v := range d.Headers {
		headers[k] = v
	}
	return c.broker.Publish(context.WithoutCancel(ctx), "", rabbitmq.EmailParkingQueue, amqp.Publishing{
		ContentType:   d.ContentType,
		MessageId:     d.MessageId,
		CorrelationId: d.CorrelationId,
		Type:          d.Type,
		Headers:       headers,
		Body:          d.Body,
	})
}
