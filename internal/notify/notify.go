// Package notify turns order events into buyer-facing notifications.
package notify

import (
	"context"
	"errors"
	"fmt"

	"tokoorder/internal/events"
	"tokoorder/internal/models"
	"tokoorder/internal/repositories"

	"go.uber.org/zap"
)

// FeedbackReminder asks a buyer to rate a fulfilled order.
type FeedbackReminder struct {
	OrderID  string
	BuyerID  string
	Username string
	Email    string
	Status   models.OrderStatus
}

// Notifier delivers notifications to buyers.
type Notifier interface {
	SendFeedbackReminder(ctx context.Context, reminder FeedbackReminder) error
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log.Named("notifier")}
}

func (n *LogNotifier) SendFeedbackReminder(_ context.Context, r FeedbackReminder) error {
	n.log.Info("feedback reminder",
		zap.String("order_id", r.OrderID),
		zap.String("buyer_id", r.BuyerID),
		zap.String("email", r.Email),
		zap.String("status", string(r.Status)),
	)
	return nil
}

// Dispatcher routes events to the notifier.
type Dispatcher struct {
	users    repositories.UserRepository
	notifier Notifier
	log      *zap.Logger
}

func NewDispatcher(users repositories.UserRepository, notifier Notifier, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{users: users, notifier: notifier, log: log.Named("dispatcher")}
}

// Handle is an events.Handler.
func (d *Dispatcher) Handle(ctx context.Context, event events.OrderEvent) error {
	switch event.Type {
	case events.TypeFeedbackDue:
		return d.feedbackDue(ctx, event)
	case events.TypeOrderCreated:
		d.log.Info("order created",
			zap.String("order_id", event.OrderID),
			zap.String("payment_type", string(event.PaymentType)),
			zap.Int64("amount", event.Amount),
		)
		return nil
	default:
		d.log.Debug("ignoring event", zap.String("event_type", event.Type))
		return nil
	}
}

func (d *Dispatcher) feedbackDue(ctx context.Context, event events.OrderEvent) error {
	if event.BuyerID == "" {
		return nil
	}

	user, err := d.users.GetByID(ctx, event.BuyerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			d.log.Warn("buyer not found for feedback reminder",
				zap.String("order_id", event.OrderID),
				zap.String("buyer_id", event.BuyerID),
			)
			return nil
		}
		return fmt.Errorf("load buyer %s: %w", event.BuyerID, err)
	}

	return d.notifier.SendFeedbackReminder(ctx, FeedbackReminder{
		OrderID:  event.OrderID,
		BuyerID:  user.ID,
		Username: user.Username,
		Email:    user.Email,
		Status:   event.Status,
	})
}
