// Package queue defines the order lifecycle messages exchanged over RabbitMQ
// and the consumer that records them.
package queue

import (
	"context"
	"time"

	"github.com/iliyamo/football-ticketing/internal/model"
)

// OrderEventsQueue is the durable queue every order event is routed to.
const OrderEventsQueue = "order.events"

// Event types.  Expired orders are persisted as cancelled; only the event
// stream tells the two apart.
const (
	OrderCreated   = "order.created"
	OrderPaid      = "order.paid"
	OrderCancelled = "order.cancelled"
	OrderExpired   = "order.expired"
	OrderUpdated   = "order.updated"
	OrderDeleted   = "order.deleted"
)

// OrderEvent is published after an order change has been committed.  It
// carries enough for downstream consumers to log, notify or trigger
// analytics without querying the primary database.
type OrderEvent struct {
	Type        string  `json:"type"`
	OrderID     int64   `json:"order_id"`
	UserID      int64   `json:"user_id"`
	EventID     int64   `json:"event_id"`
	TribuneID   int64   `json:"tribune_id"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
	Status      string  `json:"status"`
	BookingCode string  `json:"booking_code,omitempty"`
	OccurredAt  string  `json:"occurred_at"`
}

// NewOrderEvent snapshots o into an event of the given type.
func NewOrderEvent(typ string, o *model.Order, at time.Time) OrderEvent {
	ev := OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		EventID:    o.EventID,
		TribuneID:  o.TribuneID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		Status:     string(o.Status),
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
	if o.BookingCode != nil {
		ev.BookingCode = *o.BookingCode
	}
	return ev
}

// Publisher delivers order events.  Implementations must not block the
// request path for long and must never fail the change that produced the
// event.
type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// Nop discards every event.  It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
