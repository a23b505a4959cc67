package rabbitmq

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	NotificationsExchange = "cakeshop.notifications"
	RetryExchange         = "cakeshop.retry"
	EmailKey              = "email"
	EmailQueue            = "email.q"
	EmailRetryQueue       = "email.retry"
	EmailParkingQueue     = "email.dlq"
)

// Topology is the exchange/queue layout for order emails:
// failed deliveries dead-letter into a TTL retry queue that dead-letters
// back into the main exchange; poison messages are parked in email.dlq.
type Topology struct {
	RetryDelay time.Duration
}

func (t Topology) Declare(ch *amqp.Channel) error {
	for _, ex := range []string{NotificationsExchange, RetryExchange} {
		if err := ch.ExchangeDeclare(ex, "direct", true, false, false, false, nil); err != nil {
			return err
		}
	}

	if _, err := ch.QueueDeclare(EmailQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    RetryExchange,
		"x-dead-letter-routing-key": EmailKey,
	}); err != nil {
		return err
	}
	if err := ch.QueueBind(EmailQueue, EmailKey, NotificationsExchange, false, nil); err != nil {
		return err
	}

	delay := t.RetryDelay
	if delay <= 0 {
		delay = 30 * time.Second
	}
	if _, err := ch.QueueDeclare(EmailRetryQueue, true, false, false, false, amqp.Table{
		"x-message-ttl":             int32(delay / time.Millisecond),
		"x-dead-letter-exchange":    NotificationsExchange,
		"x-dead-letter-routing-key": EmailKey,
	}); err != nil {
		return err
	}
	if err := ch.QueueBind(EmailRetryQueue, EmailKey, RetryExchange, false, nil); err != nil {
		return err
	}

	_, err := ch.QueueDeclare(EmailParkingQueue, true, false, false, false, nil)
	return err
}

// DeathCount reports how many times a delivery was dead-lettered out of queue.
func DeathCount(headers amqp.Table, queue string) int64 {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, d := range deaths {
		entry, ok := d.(amqp.Table)
		if !ok || entry["queue"] != queue {
			continue
		}
		switch n := entry["count"].(type) {
		case int64:
			return n
		case int32:
			return int64(n)
		case int:
			return int64(n)
		}
	}
	return 0
}
