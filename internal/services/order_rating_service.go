package services

import (
	"context"
	"errors"

	"tokoorder/internal/apperror"
	"tokoorder/internal/models"
	"tokoorder/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// OrderRatingInput carries the scores shared by create and update.
type OrderRatingInput struct {
	OverallRating         int      `json:"overallRating" validate:"required,min=1,max=5"`
	DeliveryRating        *int     `json:"deliveryRating" validate:"omitempty,min=1,max=5"`
	PackagingRating       *int     `json:"packagingRating" validate:"omitempty,min=1,max=5"`
	CustomerServiceRating *int     `json:"customerServiceRating" validate:"omitempty,min=1,max=5"`
	Review                string   `json:"review" validate:"max=1000"`
	WouldRecommend        *bool    `json:"wouldRecommend"`
	Tags                  []string `json:"tags" validate:"max=10,unique,dive,order_rating_tag"`
}

// CreateOrderRatingRequest is the body of POST order-rating/create.
type CreateOrderRatingRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	OrderRatingInput
}

// OrderRatingService manages order-experience ratings behind the eligibility gate.
type OrderRatingService struct {
	ratings  repositories.OrderRatingRepository
	orders   repositories.OrderRepository
	validate *validator.Validate
	log      *zap.Logger
}

func NewOrderRatingService(ratings repositories.OrderRatingRepository, orders repositories.OrderRepository, log *zap.Logger) *OrderRatingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderRatingService{
		ratings:  ratings,
		orders:   orders,
		validate: newValidator(),
		log:      log.Named("order_rating_service"),
	}
}

// Create stores the user's rating of a delivered, paid order. A second
// rating for the same order fails with DuplicateRating.
func (s *OrderRatingService) Create(ctx context.Context, userID string, req CreateOrderRatingRequest) (*models.OrderRating, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	order, err := s.buyerOrder(ctx, req.OrderID, userID)
	if err != nil {
		return nil, err
	}
	if err := orderEligible(order); err != nil {
		return nil, err
	}
	if err := s.ensureNotRated(ctx, userID, req.OrderID); err != nil {
		return nil, err
	}

	rating := &models.OrderRating{UserID: userID, OrderID: req.OrderID}
	req.OrderRatingInput.apply(rating)
	if err := s.ratings.Create(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.DuplicateRating("order already rated")
		}
		s.log.Error("order rating insert failed", zap.String("user_id", userID), zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, apperror.Internal(err)
	}

	s.log.Info("order rating created", zap.String("rating_id", rating.ID), zap.String("order_id", rating.OrderID))
	return rating, nil
}

// CanRate mirrors Create's gate without side effects.
func (s *OrderRatingService) CanRate(ctx context.Context, userID, orderID string) (Eligibility, error) {
	if orderID == "" {
		return Eligibility{}, apperror.Validation("orderId is required")
	}
	order, err := s.buyerOrder(ctx, orderID, userID)
	if err != nil {
		return denied(err)
	}
	if err := orderEligible(order); err != nil {
		return denied(err)
	}
	if err := s.ensureNotRated(ctx, userID, orderID); err != nil {
		return denied(err)
	}
	return Eligibility{CanRate: true, OrderID: orderID}, nil
}

// GetForOrder returns the user's rating of an order.
func (s *OrderRatingService) GetForOrder(ctx context.Context, userID, orderID string) (*models.OrderRating, error) {
	rating, err := s.ratings.FindByUserAndOrder(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("order rating not found")
		}
		s.log.Error("order rating lookup failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return rating, nil
}

// Update rewrites every score of the owner's rating.
func (s *OrderRatingService) Update(ctx context.Context, userID, ratingID string, req OrderRatingInput) (*models.OrderRating, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	rating, err := s.owned(ctx, userID, ratingID)
	if err != nil {
		return nil, err
	}

	req.apply(rating)
	if err := s.ratings.Update(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("order rating not found")
		}
		s.log.Error("order rating update failed", zap.String("rating_id", ratingID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return rating, nil
}

// Delete removes the owner's rating.
func (s *OrderRatingService) Delete(ctx context.Context, userID, ratingID string) error {
	if _, err := s.owned(ctx, userID, ratingID); err != nil {
		return err
	}
	if err := s.ratings.Delete(ctx, ratingID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFoundOrForbidden("order rating not found")
		}
		s.log.Error("order rating delete failed", zap.String("rating_id", ratingID), zap.Error(err))
		return apperror.Internal(err)
	}
	return nil
}

func (in OrderRatingInput) apply(rating *models.OrderRating) {
	rating.OverallRating = in.OverallRating
	rating.DeliveryRating = in.DeliveryRating
	rating.PackagingRating = in.PackagingRating
	rating.CustomerServiceRating = in.CustomerServiceRating
	rating.Review = in.Review
	rating.WouldRecommend = in.WouldRecommend
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	rating.Tags = datatypes.JSONSlice[string](tags)
}

func (s *OrderRatingService) buyerOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
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

func (s *OrderRatingService) ensureNotRated(ctx context.Context, userID, orderID string) error {
	_, err := s.ratings.FindByUserAndOrder(ctx, userID, orderID)
	switch {
	case err == nil:
		return apperror.DuplicateRating(ReasonAlreadyRated)
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		s.log.Error("order rating lookup failed", zap.String("user_id", userID), zap.String("order_id", orderID), zap.Error(err))
		return apperror.Internal(err)
	}
}

func (s *OrderRatingService) owned(ctx context.Context, userID, ratingID string) (*models.OrderRating, error) {
	rating, err := s.ratings.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("order rating not found")
		}
		s.log.Error("order rating lookup failed", zap.String("rating_id", ratingID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	if rating.UserID != userID {
		return nil, apperror.NotFoundOrForbidden("order rating not found")
	}
	return rating, nil
}
