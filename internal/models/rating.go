package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rating is a product review. At most one exists per (UserID, ProductID);
// OrderID records which purchase made the user eligible.
type Rating struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_rating_user_product"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);not null;uniqueIndex:idx_rating_user_product;index"`
	OrderID   string    `json:"orderId" gorm:"type:varchar(36);not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Review    string    `json:"review,omitempty" gorm:"type:varchar(1000)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderRating reviews the purchase experience. At most one exists per
// (UserID, OrderID).
type OrderRating struct {
	ID                    string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID                string                      `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_order_rating_user_order"`
	OrderID               string                      `json:"orderId" gorm:"type:varchar(36);not null;uniqueIndex:idx_order_rating_user_order"`
	OverallRating         int                         `json:"overallRating" gorm:"not null"`
	DeliveryRating        *int                        `json:"deliveryRating,omitempty"`
	PackagingRating       *int                        `json:"packagingRating,omitempty"`
	CustomerServiceRating *int                        `json:"customerServiceRating,omitempty"`
	Review                string                      `json:"review,omitempty" gorm:"type:varchar(1000)"`
	WouldRecommend        *bool                       `json:"wouldRecommend,omitempty"`
	Tags                  datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt             time.Time                   `json:"createdAt"`
	UpdatedAt             time.Time                   `json:"updatedAt"`
}

// OrderRatingTags enumerates the tags an order rating may carry.
var OrderRatingTags = []string{
	"fast_delivery",
	"late_delivery",
	"good_packaging",
	"damaged_packaging",
	"as_described",
	"not_as_described",
	"great_quality",
	"poor_quality",
	"helpful_support",
	"value_for_money",
}

// RatingSummary aggregates the ratings of one product.
type RatingSummary struct {
	AverageRating float64 `json:"averageRating"`
	TotalCount    int64   `json:"totalCount"`
}
