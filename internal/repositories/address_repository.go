package repositories

import (
	"context"
	"errors"
	"fmt"

	"tokoorder/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddressRepository resolves address-book entries. Address CRUD is owned by
// another service; Create exists for seeding.
type AddressRepository interface {
	GetForUser(ctx context.Context, id, userID string) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

// GetForUser returns the address only when it belongs to userID.
func (r *GORMAddressRepository) GetForUser(ctx context.Context, id, userID string) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("address %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get address %s: %w", id, err)
	}
	return &address, nil
}

func (r *GORMAddressRepository) Create(ctx context.Context, address *models.Address) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

var _ AddressRepository = (*GORMAddressRepository)(nil)
