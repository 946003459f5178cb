package repositories

import (
	"context"
	"errors"
	"fmt"

	"tokoorder/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts the order and its lines in one transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Version = 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order %s: %w", order.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order with its lines.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// GetByIDForBuyer retrieves an order only if buyerID placed it.
func (r *GORMOrderRepository) GetByIDForBuyer(ctx context.Context, id, buyerID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("id = ? AND buyer_id = ?", id, buyerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s for buyer %s: %w", id, buyerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *GORMOrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for buyer %s: %w", buyerID, err)
	}
	return orders, nil
}

// ListBySeller returns orders containing at least one of the seller's products.
func (r *GORMOrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	owned := r.db.Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID)

	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("id IN (?)", owned).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for seller %s: %w", sellerID, err)
	}
	return orders, nil
}

// UpdateStatus overwrites the status and returns the updated order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

// SetPaid overwrites the payment flag without touching the status.
func (r *GORMOrderRepository) SetPaid(ctx context.Context, id string, isPaid bool) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_paid": isPaid,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update payment of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

// MarkPaid is a compare-and-set on is_paid, so repeated confirmations are no-ops.
func (r *GORMOrderRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{
			"is_paid": true,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var count int64
	if err := db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if count == 0 {
		return false, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return false, nil
}

// SetCheckoutSession records the provider session created for the order.
func (r *GORMOrderRepository) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("checkout_session_id", sessionID)
	if res.Error != nil {
		return fmt.Errorf("failed to store checkout session for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// SellerOwnsProductIn reports whether any line of the order is a product sold by sellerID.
func (r *GORMOrderRepository) SellerOwnsProductIn(ctx context.Context, orderID, sellerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ? AND products.seller_id = ?", orderID, sellerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check seller ownership of order %s: %w", orderID, err)
	}
	return count > 0, nil
}

// Delete removes an order and its lines.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete lines of order %s: %w", id, err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete order %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

var _ OrderRepository = (*GORMOrderRepository)(nil)
