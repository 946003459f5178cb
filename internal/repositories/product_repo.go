package repositories

import (
	"context"

	"tokoorder/internal/models"
)

// ProductRepository reads the catalog. Catalog management lives elsewhere;
// Create and Update exist for seeding.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
}
