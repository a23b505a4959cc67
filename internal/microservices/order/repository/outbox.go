package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"cakeshop/internal/microservices/order/domain/dao"
	notify "cakeshop/internal/microservices/notificator/domain/dao"
)

// enqueueEmail writes the notification for order into the outbox inside
// the caller's transaction.
func enqueueEmail(ctx context.Context, tx *sqlx.Tx, kind notify.Kind, order dao.Order) error {
	msg := ToEmail(kind, order)
	msg.MessageID = uuid.NewString()

	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal email payload")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO email_outbox (message_id, order_id, kind, payload)
		VALUES ($1, $2, $3, $4)`,
		msg.MessageID, order.ID, string(kind), string(payload))
	return errors.Wrap(err, "insert outbox row")
}

func ToEmail(kind notify.Kind, order dao.Order) notify.OrderEmail {
	items := make([]notify.EmailItem, 0, len(order.Cakes))
	for _, c := range order.Cakes {
		items = append(items, notify.EmailItem{
			CakeName:    c.Name,
			Size:        c.Size,
			Amount:      c.Amount,
			Price:       c.Price,
			MessageCake: c.MessageCake,
		})
	}
	return notify.OrderEmail{
		Kind:       kind,
		OrderID:    order.ID,
		FirstName:  order.FirstName,
		LastName:   order.LastName,
		Email:      order.Email,
		Tel:        order.Tel,
		Date:       order.Date,
		PickupHour: order.PickupHour,
		Message:    order.Message,
		Status:     string(order.Status),
		Items:      items,
	}
}
