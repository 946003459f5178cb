package services

import (
	"context"
	"errors"
	"fmt"

	"tokoorder/internal/apperror"
	"tokoorder/internal/events"
	"tokoorder/internal/models"
	"tokoorder/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// UpdateStatusRequest is the body of PUT order/status.
type UpdateStatusRequest struct {
	OrderID string             `json:"orderId" validate:"required"`
	Status  models.OrderStatus `json:"status" validate:"required"`
}

// UpdatePaymentRequest is the body of PUT order/payment. IsPaid is a pointer
// so an omitted flag is distinguishable from false.
type UpdatePaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	IsPaid  *bool  `json:"isPaid" validate:"required"`
}

// StatusService applies seller-driven status and payment changes.
type StatusService struct {
	orders    repositories.OrderRepository
	publisher events.Publisher
	validate  *validator.Validate
	log       *zap.Logger
}

func NewStatusService(orders repositories.OrderRepository, publisher events.Publisher, log *zap.Logger) *StatusService {
	if log == nil {
		log = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &StatusService{
		orders:    orders,
		publisher: publisher,
		validate:  newValidator(),
		log:       log.Named("status_service"),
	}
}

// UpdateStatus overwrites the order status. When the order lands in a
// fulfilled status while paid and owned by a buyer, one feedback_due event is
// published; publishing failures never fail the update.
func (s *StatusService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*models.Order, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown status %q", req.Status))
	}

	current, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, s.lookupError("update_status", req.OrderID, err)
	}
	if !models.CanTransition(current.Status, req.Status) {
		return nil, apperror.Validation(fmt.Sprintf("cannot move order from %s to %s", current.Status, req.Status))
	}

	order, err := s.orders.UpdateStatus(ctx, req.OrderID, req.Status)
	if err != nil {
		return nil, s.lookupError("update_status", req.OrderID, err)
	}

	s.log.Info("order status updated",
		zap.String("order_id", order.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(order.Status)),
	)

	if order.Status.Fulfilled() && order.IsPaid && !order.IsGuest() {
		event := events.NewOrderEvent(events.TypeFeedbackDue, order)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Error("failed to publish feedback reminder",
				zap.String("order_id", order.ID),
				zap.String("user_id", event.BuyerID),
				zap.Error(err),
			)
		}
	}

	return order, nil
}

// SetPaymentStatus overwrites the payment flag without touching the status.
func (s *StatusService) SetPaymentStatus(ctx context.Context, req UpdatePaymentRequest) (*models.Order, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	order, err := s.orders.SetPaid(ctx, req.OrderID, *req.IsPaid)
	if err != nil {
		return nil, s.lookupError("set_payment", req.OrderID, err)
	}

	s.log.Info("order payment updated", zap.String("order_id", order.ID), zap.Bool("is_paid", order.IsPaid))
	return order, nil
}

func (s *StatusService) lookupError(op, orderID string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NotFoundOrForbidden("order not found")
	}
	s.log.Error("order store failure", zap.String("operation", op), zap.String("order_id", orderID), zap.Error(err))
	return apperror.Internal(err)
}
