package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cakeshop/internal/common/apperr"
	"cakeshop/internal/microservices/notificator/domain/dao"
)

func (m *memOutbox) ListByOrder(ctx context.Context, orderID, limit, offset int) ([]dao.OutboxMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []dao.OutboxMessage{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].OrderID == orderID {
			out = append(out, m.rows[i])
		}
	}
	if offset >= len(out) {
		return []dao.OutboxMessage{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestOrderMails(t *testing.T) {
	repo := &memOutbox{rows: []dao.OutboxMessage{
		outboxRow(t, 1, dao.KindConfirmation),
		outboxRow(t, 2, dao.KindUpdate),
	}}
	svc := NewTimelineService(repo)

	mails, err := svc.OrderMails(context.Background(), 7, 10, 0)
	require.NoError(t, err)
	require.Len(t, mails, 2)
	assert.Equal(t, dao.KindUpdate, mails[0].Kind)

	mails, err = svc.OrderMails(context.Background(), 7, 1, 1)
	require.NoError(t, err)
	require.Len(t, mails, 1)
	assert.Equal(t, dao.KindConfirmation, mails[0].Kind)

	_, err = svc.OrderMails(context.Background(), 7, 0, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.OrderMails(context.Background(), 7, 10, -1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
