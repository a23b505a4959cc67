package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"cakeshop/internal/connections/database"
	"cakeshop/internal/microservices/notificator/domain/dao"
)

// PublishFunc hands one outbox row to the transport.
type PublishFunc func(ctx context.Context, msg dao.OutboxMessage) error

type RelayStats struct {
	Claimed   int
	Published int
	Failed    int
}

type OutboxRepositoryInterface interface {
	Relay(ctx context.Context, limit, maxAttempts int, publish PublishFunc) (RelayStats, error)
	Pending(ctx context.Context) (int, error)
	ListByOrder(ctx context.Context, orderID, limit, offset int) ([]dao.OutboxMessage, error)
}

type OutboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) OutboxRepositoryInterface {
	return &OutboxRepository{db: db}
}

// Relay claims up to limit pending rows and publishes them while the rows
// stay locked, so concurrent relays never pick the same message.
func (r *OutboxRepository) Relay(ctx context.Context, limit, maxAttempts int, publish PublishFunc) (RelayStats, error) {
	var stats RelayStats
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var batch []dao.OutboxMessage
		if err := tx.SelectContext(ctx, &batch, `
			SELECT id, message_id::text AS message_id, order_id, kind,
			       payload::text AS payload, status, attempts, last_error, created_at, published_at
			FROM email_outbox
			WHERE status = $1
			ORDER BY id
			LIMIT $2
			FOR UPDATE SKIP LOCKED`, dao.OutboxPending, limit); err != nil {
			return errors.Wrap(err, "claim outbox rows")
		}
		stats.Claimed = len(batch)

		for _, msg := range batch {
			if err := publish(ctx, msg); err != nil {
				status := dao.OutboxPending
				if msg.Attempts+1 >= maxAttempts {
					status = dao.OutboxFailed
					stats.Failed++
				}
				if _, err := tx.ExecContext(ctx, `
					UPDATE email_outbox
					SET attempts = attempts + 1, last_error = $2, status = $3
					WHERE id = $1`, msg.ID, err.Error(), status); err != nil {
					return errors.Wrap(err, "record publish failure")
				}
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE email_outbox
				SET status = $2, attempts = attempts + 1, published_at = now()
				WHERE id = $1`, msg.ID, dao.OutboxPublished); err != nil {
				return errors.Wrap(err, "mark outbox row published")
			}
			stats.Published++
		}
		return nil
	})
	return stats, err
}

func (r *OutboxRepository) Pending(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM email_outbox WHERE status = $1`, dao.OutboxPending)
	return n, errors.Wrap(err, "count pending outbox rows")
}

// ListByOrder returns the delivery timeline of an order's mails, newest first.
func (r *OutboxRepository) ListByOrder(ctx context.Context, orderID, limit, offset int) ([]dao.OutboxMessage, error) {
	out := []dao.OutboxMessage{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, message_id::text AS message_id, order_id, kind, status, attempts,
		       last_error, created_at, published_at
		FROM email_outbox
		WHERE order_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`, orderID, limit, offset)
	return out, errors.Wrap(err, "list order mails")
}
