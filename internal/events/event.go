package events

import (
	"context"
	"errors"
	"time"
)

const (
	OrderOpened      = "order.opened"
	OrderItemAdded   = "order.item_added"
	OrderItemRemoved = "order.item_removed"
	OrderClosed      = "order.closed"
	OrderReleased    = "order.released"
	ProductLowStock  = "product.low_stock"
)

// Event is the envelope pushed to floor screens and the message bus.
type Event struct {
	Type       string      `json:"event"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

func New(eventType string, payload interface{}) Event {
	return Event{Type: eventType, OccurredAt: time.Now(), Payload: payload}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
