package dto

import "cakeshop/internal/microservices/order/domain/dao"

type OrderRequest struct {
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	Tel        string           `json:"tel"`
	Email      string           `json:"email"`
	Date       string           `json:"date"`
	PickupHour string           `json:"pickupHour"`
	Message    string           `json:"message"`
	Status     string           `json:"status"`
	Cakes      []OrderCakeInput `json:"cakes"`
}

// OrderCakeInput is one requested line. ID is set only when editing an
// existing line. A client-sent price is ignored; lines are priced from the
// catalog.
type OrderCakeInput struct {
	ID          int    `json:"id"`
	CakeID      int    `json:"cake_id"`
	Size        string `json:"size"`
	Amount      int    `json:"amount"`
	MessageCake string `json:"message_cake"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type CreateOrderResponse struct {
	ID    int `json:"id"`
	Total int `json:"total"`
}

// ConvertItems maps input lines to domain lines
func ConvertItems(inputs []OrderCakeInput) []dao.OrderCake {
	items := make([]dao.OrderCake, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, dao.OrderCake{
			ID:          in.ID,
			CakeID:      in.CakeID,
			Size:        in.Size,
			Amount:      in.Amount,
			MessageCake: in.MessageCake,
		})
	}
	return items
}
