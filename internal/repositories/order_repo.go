package repositories

import (
	"context"

	"tokoorder/internal/models"
)

// OrderRepository is the persistence boundary for orders. It is the only
// component that mutates an order; all writes are single conditional
// statements so concurrent requests never need an in-process lock.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByIDForBuyer(ctx context.Context, id, buyerID string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	SetPaid(ctx context.Context, id string, isPaid bool) (*models.Order, error)
	// MarkPaid flips is_paid to true if it is still false. applied is false
	// when the order was already paid.
	MarkPaid(ctx context.Context, id string) (applied bool, err error)
	SetCheckoutSession(ctx context.Context, id, sessionID string) error
	SellerOwnsProductIn(ctx context.Context, orderID, sellerID string) (bool, error)
	Delete(ctx context.Context, id string) error
}
