package repositories

import (
	"context"

	"tokoorder/internal/models"
)

// RatingRepository stores product ratings. Create returns ErrDuplicate when
// the (user, product) pair already has a rating; the unique index is the
// final arbiter between concurrent submissions.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id string) (*models.Rating, error)
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.Rating, error)
	Update(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, id string) error
	ListByProduct(ctx context.Context, productID string) ([]models.Rating, error)
	SummaryByProduct(ctx context.Context, productID string) (models.RatingSummary, error)
}

// OrderRatingRepository stores order-experience ratings, unique per (user, order).
type OrderRatingRepository interface {
	Create(ctx context.Context, rating *models.OrderRating) error
	GetByID(ctx context.Context, id string) (*models.OrderRating, error)
	FindByUserAndOrder(ctx context.Context, userID, orderID string) (*models.OrderRating, error)
	Update(ctx context.Context, rating *models.OrderRating) error
	Delete(ctx context.Context, id string) error
}
