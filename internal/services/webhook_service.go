package services

import (
	"context"
	"errors"

	"tokoorder/internal/apperror"
	"tokoorder/internal/payments"
	"tokoorder/internal/repositories"

	"go.uber.org/zap"
)

// WebhookOutcome describes what a delivery did. Every outcome is acknowledged
// to the provider; only signature failures are rejected.
type WebhookOutcome string

const (
	OutcomePaid           WebhookOutcome = "paid"
	OutcomeAlreadyPaid    WebhookOutcome = "already_paid"
	OutcomeIgnored        WebhookOutcome = "ignored"
	OutcomeMissingOrderID WebhookOutcome = "missing_order_id"
	OutcomeOrderNotFound  WebhookOutcome = "order_not_found"
	OutcomeStoreFailure   WebhookOutcome = "store_failure"
)

// WebhookService reconciles payment provider events with stored orders.
type WebhookService struct {
	verifier payments.EventVerifier
	orders   repositories.OrderRepository
	log      *zap.Logger
}

func NewWebhookService(verifier payments.EventVerifier, orders repositories.OrderRepository, log *zap.Logger) *WebhookService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookService{verifier: verifier, orders: orders, log: log.Named("webhook")}
}

// HandleEvent verifies and applies one delivery. Both recognized event types
// converge on the same conditional is_paid update, so duplicates and the
// checkout/payment pair for one payment are no-ops after the first.
func (s *WebhookService) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) (WebhookOutcome, error) {
	event, err := s.verifier.Verify(payload, signatureHeader)
	if err != nil {
		s.log.Warn("rejecting webhook delivery", zap.Error(err))
		return "", apperror.SignatureVerification(err)
	}

	log := s.log.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	if !event.Recognized() {
		log.Debug("ignoring unhandled event type")
		return OutcomeIgnored, nil
	}
	if event.OrderID == "" {
		log.Warn("event carries no order id")
		return OutcomeMissingOrderID, nil
	}

	log = log.With(zap.String("order_id", event.OrderID), zap.String("user_id", event.UserID))

	applied, err := s.orders.MarkPaid(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Warn("event references unknown order")
			return OutcomeOrderNotFound, nil
		}
		log.Error("failed to mark order paid", zap.Error(err))
		return OutcomeStoreFailure, nil
	}
	if !applied {
		log.Info("order already paid")
		return OutcomeAlreadyPaid, nil
	}

	log.Info("order marked paid")
	return OutcomePaid, nil
}
