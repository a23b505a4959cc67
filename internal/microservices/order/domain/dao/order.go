package dao

import (
	"sort"
	"time"
)

type Status string

const (
	StatusUnpaid      Status = "a"
	StatusOnline      Status = "b"
	StatusPaidInStore Status = "c"
	StatusDelivered   Status = "d"
	StatusCancelled   Status = "e"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnpaid, StatusOnline, StatusPaidInStore, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Active orders hold stock; cancelled ones have given it back.
func (s Status) Active() bool { return s != StatusCancelled }

func (s Status) Label() string {
	switch s {
	case StatusUnpaid:
		return "未"
	case StatusOnline:
		return "オンライン予約"
	case StatusPaidInStore:
		return "店頭支払い済"
	case StatusDelivered:
		return "お渡し済"
	case StatusCancelled:
		return "キャンセル"
	}
	return string(s)
}

type StockPolicy string

const (
	// StockStrict refuses a deduction that would take stock below zero.
	StockStrict StockPolicy = "strict"
	// StockClamp floors stock at zero and lets the order through.
	StockClamp StockPolicy = "clamp"
)

type Order struct {
	ID         int         `db:"id_order" json:"id_order"`
	FirstName  string      `db:"first_name" json:"first_name"`
	LastName   string      `db:"last_name" json:"last_name"`
	Tel        string      `db:"tel" json:"tel"`
	Email      string      `db:"email" json:"email"`
	Date       string      `db:"date" json:"date"`
	PickupHour string      `db:"pickup_hour" json:"pickupHour"`
	Message    string      `db:"message" json:"message"`
	Status     Status      `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"date_order"`
	Cakes      []OrderCake `db:"-" json:"cakes"`
}

func (o Order) Total() int {
	total := 0
	for _, c := range o.Cakes {
		total += c.Price * c.Amount
	}
	return total
}

type OrderCake struct {
	ID          int    `db:"id" json:"id"`
	OrderID     int    `db:"order_id" json:"-"`
	CakeID      int    `db:"cake_id" json:"cake_id"`
	Name        string `db:"name" json:"name"`
	Size        string `db:"size" json:"size"`
	Amount      int    `db:"amount" json:"amount"`
	Price       int    `db:"price" json:"price"`
	MessageCake string `db:"message_cake" json:"message_cake"`
	Stock       int    `db:"stock" json:"stock"`
}

func (c OrderCake) Key() StockKey { return StockKey{CakeID: c.CakeID, Size: c.Size} }

type StockKey struct {
	CakeID int
	Size   string
}

// StockChange is a signed stock movement: negative deducts, positive restores.
type StockChange struct {
	StockKey
	Delta int
}

// StockAdjustments computes the stock movements implied by moving an order
// from (oldStatus, oldLines) to (newStatus, newLines). Only active orders
// hold stock, so the result is "give back what the old state held, take
// what the new state holds", netted per cake size. Changes are sorted so
// concurrent transactions lock cake_sizes rows in the same order.
func StockAdjustments(oldStatus Status, oldLines []OrderCake, newStatus Status, newLines []OrderCake) []StockChange {
	net := map[StockKey]int{}
	if oldStatus.Active() {
		for _, l := range oldLines {
			net[l.Key()] += l.Amount
		}
	}
	if newStatus.Active() {
		for _, l := range newLines {
			net[l.Key()] -= l.Amount
		}
	}

	changes := make([]StockChange, 0, len(net))
	for k, d := range net {
		if d != 0 {
			changes = append(changes, StockChange{StockKey: k, Delta: d})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].CakeID != changes[j].CakeID {
			return changes[i].CakeID < changes[j].CakeID
		}
		return changes[i].Size < changes[j].Size
	})
	return changes
}

// LineDiff turns the stored lines of an order into the submitted ones.
// Lines carrying an id update that line; lines without one are new.
type LineDiff struct {
	Insert []OrderCake
	Update []LineUpdate
	Delete []int
}

// LineUpdate is an edited line. Reprice is set when the line moved to
// another cake size and needs a fresh price snapshot.
type LineUpdate struct {
	Line    OrderCake
	Reprice bool
}

// DiffLines returns ok=false when a submitted line id does not belong to
// the order or appears twice.
func DiffLines(existing, desired []OrderCake) (LineDiff, bool) {
	byID := make(map[int]OrderCake, len(existing))
	for _, l := range existing {
		byID[l.ID] = l
	}

	var diff LineDiff
	kept := map[int]bool{}
	for _, want := range desired {
		if want.ID == 0 {
			diff.Insert = append(diff.Insert, want)
			continue
		}
		have, ok := byID[want.ID]
		if !ok || kept[want.ID] {
			return LineDiff{}, false
		}
		kept[want.ID] = true

		reprice := have.Key() != want.Key()
		if !reprice && have.Amount == want.Amount && have.MessageCake == want.MessageCake {
			continue
		}
		if !reprice {
			want.Price = have.Price
		}
		diff.Update = append(diff.Update, LineUpdate{Line: want, Reprice: reprice})
	}
	for _, l := range existing {
		if !kept[l.ID] {
			diff.Delete = append(diff.Delete, l.ID)
		}
	}
	return diff, true
}
