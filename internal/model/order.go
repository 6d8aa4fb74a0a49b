package model

import "time"

// OrderStatus is the persisted lifecycle state of an order.  An order that
// outlives its hold window is stored as cancelled; "expired" only exists in
// event payloads.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the three stored statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

// HoldsSeats reports whether an order in this status keeps its quantity
// subtracted from the tribune.
func (s OrderStatus) HoldsSeats() bool { return s == OrderPending || s == OrderPaid }

// CanTransition reports whether a status-only update may move an order from
// one status to another.  Repeating the current status is always allowed and
// is a no-op.  Once cancelled, an order stays cancelled.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case OrderPending:
		return to == OrderPaid || to == OrderCancelled
	case OrderPaid:
		return to == OrderCancelled
	}
	return false
}

// Order is a user's reservation of Quantity seats in one tribune.
//
// Fields:
//   - TotalPrice: quantity × tribune price at creation; not recomputed later.
//   - Status: pending, paid or cancelled.
//   - OrderDate: creation time; the hold window is measured from here.
//   - BookingCode: issued when the order becomes paid, null before that.
type Order struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	EventID     int64       `json:"event_id"`
	TribuneID   int64       `json:"tribune_id"`
	Quantity    int         `json:"quantity"`
	TotalPrice  float64     `json:"total_price"`
	Status      OrderStatus `json:"status"`
	OrderDate   time.Time   `json:"order_date"`
	BookingCode *string     `json:"booking_code"`
}
