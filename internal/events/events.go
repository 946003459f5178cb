// Package events carries order lifecycle events from the services to
// whatever transport is configured.
package events

import (
	"context"
	"time"

	"tokoorder/internal/models"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated = "order.created"
	TypeFeedbackDue  = "order.feedback_due"
)

// OrderEvent is the payload published for every lifecycle event.
type OrderEvent struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	OrderID     string             `json:"orderId"`
	BuyerID     string             `json:"buyerId,omitempty"`
	Status      models.OrderStatus `json:"status"`
	PaymentType models.PaymentType `json:"paymentType"`
	Amount      int64              `json:"amount"`
	IsPaid      bool               `json:"isPaid"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// Handler consumes a single event.
type Handler func(ctx context.Context, event OrderEvent) error

// NewOrderEvent snapshots order into an event of the given type.
func NewOrderEvent(eventType string, order *models.Order) OrderEvent {
	event := OrderEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		OrderID:     order.ID,
		Status:      order.Status,
		PaymentType: order.PaymentType,
		Amount:      order.Amount,
		IsPaid:      order.IsPaid,
		OccurredAt:  time.Now().UTC(),
	}
	if order.BuyerID != nil {
		event.BuyerID = *order.BuyerID
	}
	return event
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
