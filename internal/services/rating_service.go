package services

import (
	"context"
	"errors"

	"tokoorder/internal/apperror"
	"tokoorder/internal/models"
	"tokoorder/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CreateRatingRequest is the body of POST rating/create.
type CreateRatingRequest struct {
	ProductID string `json:"productId" validate:"required"`
	OrderID   string `json:"orderId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Review    string `json:"review" validate:"max=1000"`
}

// UpdateRatingRequest is the body of PUT rating/:ratingId.
type UpdateRatingRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=1000"`
}

// ProductRatings is a product's ratings with their aggregate.
type ProductRatings struct {
	Ratings []models.Rating      `json:"ratings"`
	Summary models.RatingSummary `json:"summary"`
}

// RatingService manages product ratings behind the eligibility gate.
type RatingService struct {
	ratings  repositories.RatingRepository
	orders   repositories.OrderRepository
	validate *validator.Validate
	log      *zap.Logger
}

func NewRatingService(ratings repositories.RatingRepository, orders repositories.OrderRepository, log *zap.Logger) *RatingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RatingService{
		ratings:  ratings,
		orders:   orders,
		validate: newValidator(),
		log:      log.Named("rating_service"),
	}
}

// Create stores the user's rating of a product bought in a delivered, paid
// order. A second rating for the same product fails with DuplicateRating.
func (s *RatingService) Create(ctx context.Context, userID string, req CreateRatingRequest) (*models.Rating, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	order, err := s.buyerOrder(ctx, req.OrderID, userID)
	if err != nil {
		return nil, err
	}
	if err := productEligible(order, req.ProductID); err != nil {
		return nil, err
	}
	if err := s.ensureNotRated(ctx, userID, req.ProductID); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		UserID:    userID,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Review:    req.Review,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.DuplicateRating("product already rated")
		}
		s.log.Error("rating insert failed", zap.String("user_id", userID), zap.String("product_id", req.ProductID), zap.Error(err))
		return nil, apperror.Internal(err)
	}

	s.log.Info("rating created", zap.String("rating_id", rating.ID), zap.String("product_id", rating.ProductID))
	return rating, nil
}

// CanRate mirrors Create's gate without side effects. With an empty orderID
// it looks for any of the user's orders that qualifies.
func (s *RatingService) CanRate(ctx context.Context, userID, productID, orderID string) (Eligibility, error) {
	if productID == "" {
		return Eligibility{}, apperror.Validation("productId is required")
	}
	if err := s.ensureNotRated(ctx, userID, productID); err != nil {
		return denied(err)
	}

	if orderID != "" {
		order, err := s.buyerOrder(ctx, orderID, userID)
		if err != nil {
			return denied(err)
		}
		if err := productEligible(order, productID); err != nil {
			return denied(err)
		}
		return Eligibility{CanRate: true, OrderID: order.ID}, nil
	}

	orders, err := s.orders.ListByBuyer(ctx, userID)
	if err != nil {
		s.log.Error("list buyer orders failed", zap.String("user_id", userID), zap.Error(err))
		return Eligibility{}, apperror.Internal(err)
	}
	for i := range orders {
		if productEligible(&orders[i], productID) == nil {
			return Eligibility{CanRate: true, OrderID: orders[i].ID}, nil
		}
	}
	return Eligibility{Reason: ReasonNoEligibleOrder}, nil
}

// Update rewrites the owner's rating.
func (s *RatingService) Update(ctx context.Context, userID, ratingID string, req UpdateRatingRequest) (*models.Rating, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	rating, err := s.owned(ctx, userID, ratingID)
	if err != nil {
		return nil, err
	}

	rating.Rating = req.Rating
	rating.Review = req.Review
	if err := s.ratings.Update(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("rating not found")
		}
		s.log.Error("rating update failed", zap.String("rating_id", ratingID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return rating, nil
}

// Delete removes the owner's rating.
func (s *RatingService) Delete(ctx context.Context, userID, ratingID string) error {
	if _, err := s.owned(ctx, userID, ratingID); err != nil {
		return err
	}
	if err := s.ratings.Delete(ctx, ratingID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFoundOrForbidden("rating not found")
		}
		s.log.Error("rating delete failed", zap.String("rating_id", ratingID), zap.Error(err))
		return apperror.Internal(err)
	}
	return nil
}

// ListForProduct returns all ratings of a product and their summary.
func (s *RatingService) ListForProduct(ctx context.Context, productID string) (*ProductRatings, error) {
	ratings, err := s.ratings.ListByProduct(ctx, productID)
	if err != nil {
		s.log.Error("list ratings failed", zap.String("product_id", productID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	summary, err := s.ratings.SummaryByProduct(ctx, productID)
	if err != nil {
		s.log.Error("rating summary failed", zap.String("product_id", productID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	return &ProductRatings{Ratings: ratings, Summary: summary}, nil
}

func (s *RatingService) buyerOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.orders.GetByIDForBuyer(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("order not found")
		}
		s.log.Error("order lookup failed", zap.String("order_id", orderID), zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return order, nil
}

func (s *RatingService) ensureNotRated(ctx context.Context, userID, productID string) error {
	_, err := s.ratings.FindByUserAndProduct(ctx, userID, productID)
	switch {
	case err == nil:
		return apperror.DuplicateRating(ReasonAlreadyRated)
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		s.log.Error("rating lookup failed", zap.String("user_id", userID), zap.String("product_id", productID), zap.Error(err))
		return apperror.Internal(err)
	}
}

func (s *RatingService) owned(ctx context.Context, userID, ratingID string) (*models.Rating, error) {
	rating, err := s.ratings.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("rating not found")
		}
		s.log.Error("rating lookup failed", zap.String("rating_id", ratingID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	if rating.UserID != userID {
		return nil, apperror.NotFoundOrForbidden("rating not found")
	}
	return rating, nil
}
