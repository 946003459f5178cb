package repositories

import (
	"context"
	"errors"
	"fmt"

	"tokoorder/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMRatingRepository is a GORM implementation of RatingRepository.
type GORMRatingRepository struct {
	db *gorm.DB
}

func NewGORMRatingRepository(db *gorm.DB) *GORMRatingRepository {
	return &GORMRatingRepository{db: db}
}

func (r *GORMRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rating for user %s product %s: %w", rating.UserID, rating.ProductID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

func (r *GORMRatingRepository) GetByID(ctx context.Context, id string) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).First(&rating, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rating %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rating %s: %w", id, err)
	}
	return &rating, nil
}

func (r *GORMRatingRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rating for user %s product %s: %w", userID, productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}
	return &rating, nil
}

// Update rewrites the score and review. Ownership keys are immutable.
func (r *GORMRatingRepository) Update(ctx context.Context, rating *models.Rating) error {
	res := r.db.WithContext(ctx).Model(&models.Rating{}).
		Where("id = ?", rating.ID).
		Updates(map[string]interface{}{
			"rating": rating.Rating,
			"review": rating.Review,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update rating %s: %w", rating.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rating %s: %w", rating.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMRatingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Rating{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete rating %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rating %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMRatingRepository) ListByProduct(ctx context.Context, productID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings for product %s: %w", productID, err)
	}
	return ratings, nil
}

func (r *GORMRatingRepository) SummaryByProduct(ctx context.Context, productID string) (models.RatingSummary, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("failed to summarise ratings for product %s: %w", productID, err)
	}
	return models.RatingSummary{AverageRating: row.Average, TotalCount: row.Total}, nil
}

var _ RatingRepository = (*GORMRatingRepository)(nil)

// GORMOrderRatingRepository is a GORM implementation of OrderRatingRepository.
type GORMOrderRatingRepository struct {
	db *gorm.DB
}

func NewGORMOrderRatingRepository(db *gorm.DB) *GORMOrderRatingRepository {
	return &GORMOrderRatingRepository{db: db}
}

func (r *GORMOrderRatingRepository) Create(ctx context.Context, rating *models.OrderRating) error {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order rating for user %s order %s: %w", rating.UserID, rating.OrderID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create order rating: %w", err)
	}
	return nil
}

func (r *GORMOrderRatingRepository) GetByID(ctx context.Context, id string) (*models.OrderRating, error) {
	var rating models.OrderRating
	if err := r.db.WithContext(ctx).First(&rating, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order rating %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order rating %s: %w", id, err)
	}
	return &rating, nil
}

func (r *GORMOrderRatingRepository) FindByUserAndOrder(ctx context.Context, userID, orderID string) (*models.OrderRating, error) {
	var rating models.OrderRating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND order_id = ?", userID, orderID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order rating for user %s order %s: %w", userID, orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find order rating: %w", err)
	}
	return &rating, nil
}

// Update rewrites every score field, including clearing optional ones.
func (r *GORMOrderRatingRepository) Update(ctx context.Context, rating *models.OrderRating) error {
	res := r.db.WithContext(ctx).Model(&models.OrderRating{}).
		Where("id = ?", rating.ID).
		Select("overall_rating", "delivery_rating", "packaging_rating", "customer_service_rating",
			"review", "would_recommend", "tags", "updated_at").
		Updates(rating)
	if res.Error != nil {
		return fmt.Errorf("failed to update order rating %s: %w", rating.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order rating %s: %w", rating.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMOrderRatingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.OrderRating{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete order rating %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order rating %s: %w", id, ErrNotFound)
	}
	return nil
}

var _ OrderRatingRepository = (*GORMOrderRatingRepository)(nil)
