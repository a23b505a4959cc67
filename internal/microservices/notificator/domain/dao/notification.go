package dao

import "time"

type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindUpdate       Kind = "update"
	KindCancellation Kind = "cancellation"
)

func (k Kind) Valid() bool {
	switch k {
	case KindConfirmation, KindUpdate, KindCancellation:
		return true
	}
	return false
}

// OrderEmail is the order snapshot carried from the outbox to the mailer.
type OrderEmail struct {
	MessageID  string      `json:"message_id"`
	Kind       Kind        `json:"kind"`
	OrderID    int         `json:"order_id"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Email      string      `json:"email"`
	Tel        string      `json:"tel"`
	Date       string      `json:"date"`
	PickupHour string      `json:"pickupHour"`
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	Items      []EmailItem `json:"items"`
}

type EmailItem struct {
	CakeName    string `json:"cake_name"`
	Size        string `json:"size"`
	Amount      int    `json:"amount"`
	Price       int    `json:"price"`
	MessageCake string `json:"message_cake"`
}

func (i EmailItem) Subtotal() int { return i.Price * i.Amount }

func (e OrderEmail) Total() int {
	total := 0
	for _, it := range e.Items {
		total += it.Subtotal()
	}
	return total
}

const (
	OutboxPending   = "pending"
	OutboxPublished = "published"
	OutboxFailed    = "failed"
)

type OutboxMessage struct {
	ID          int64      `db:"id" json:"id"`
	MessageID   string     `db:"message_id" json:"message_id"`
	OrderID     int        `db:"order_id" json:"order_id"`
	Kind        Kind       `db:"kind" json:"kind"`
	Payload     []byte     `db:"payload" json:"-"`
	Status      string     `db:"status" json:"status"`
	Attempts    int        `db:"attempts" json:"attempts"`
	LastError   string     `db:"last_error" json:"last_error,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
}

// Mail is a rendered message ready for a sender.
type Mail struct {
	To      []string
	Subject string
	HTML    string
	Inline  []Inline
}

// Inline is an embedded part referenced from the HTML as cid:ContentID.
type Inline struct {
	Filename  string
	ContentID string
	Data      []byte
}
