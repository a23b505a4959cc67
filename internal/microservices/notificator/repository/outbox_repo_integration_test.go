//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakeshop/internal/connections/database/dbtest"
	"cakeshop/internal/microservices/notificator/domain/dao"
)

func seedOutbox(t *testing.T, db *sqlx.DB, n int) int {
	t.Helper()
	var orderID int
	require.NoError(t, db.Get(&orderID, `
		INSERT INTO orders (first_name, last_name, tel, email, date, pickup_hour, status)
		VALUES ('Hanako', 'Yamada', '090', 'h@example.com', '2024-05-03', '11:00', 'b')
		RETURNING id_order`))
	for i := 0; i < n; i++ {
		_, err := db.Exec(`INSERT INTO email_outbox (message_id, order_id, kind, payload) VALUES ($1, $2, 'confirmation', $3)`,
			uuid.NewString(), orderID, `{"kind":"confirmation"}`)
		require.NoError(t, err)
	}
	return orderID
}

func TestRelayMarksRows(t *testing.T) {
	db := dbtest.Start(t)
	ctx := context.Background()
	orderID := seedOutbox(t, db, 3)
	repo := NewOutboxRepository(db)

	calls := 0
	stats, err := repo.Relay(ctx, 10, 2, func(ctx context.Context, msg dao.OutboxMessage) error {
		calls++
		assert.JSONEq(t, `{"kind":"confirmation"}`, string(msg.Payload))
		if calls == 2 {
			return errors.New("broker down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, RelayStats{Claimed: 3, Published: 2}, stats)

	pending, err := repo.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	stats, err = repo.Relay(ctx, 10, 2, func(ctx context.Context, msg dao.OutboxMessage) error {
		return errors.New("broker still down")
	})
	require.NoError(t, err)
	assert.Equal(t, RelayStats{Claimed: 1, Failed: 1}, stats)

	mails, err := repo.ListByOrder(ctx, orderID, 10, 0)
	require.NoError(t, err)
	require.Len(t, mails, 3)
	byStatus := map[string]int{}
	for _, m := range mails {
		byStatus[m.Status]++
	}
	assert.Equal(t, map[string]int{dao.OutboxPublished: 2, dao.OutboxFailed: 1}, byStatus)
	for _, m := range mails {
		if m.Status == dao.OutboxFailed {
			assert.Equal(t, 2, m.Attempts)
			assert.Equal(t, "broker still down", m.LastError)
		} else {
			assert.NotNil(t, m.PublishedAt)
		}
	}
}

func TestRelaySkipsLockedRows(t *testing.T) {
	db := dbtest.Start(t)
	ctx := context.Background()
	seedOutbox(t, db, 2)
	repo := NewOutboxRepository(db)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	_, err = tx.ExecContext(ctx, `SELECT id FROM email_outbox ORDER BY id LIMIT 1 FOR UPDATE`)
	require.NoError(t, err)

	stats, err := repo.Relay(ctx, 10, 5, func(ctx context.Context, msg dao.OutboxMessage) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Claimed)
}
