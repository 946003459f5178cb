package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a product in the store. OfferPrice is what buyers pay.
type Product struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SellerID    string         `json:"sellerId" gorm:"type:varchar(36);index;not null"`
	Name        string         `json:"name" validate:"required,min=3,max=100"`
	Description string         `json:"description" validate:"omitempty,max=500"`
	Price       int64          `json:"price" validate:"required,gt=0"`
	OfferPrice  int64          `json:"offerPrice" validate:"required,gt=0"`
	Stock       int            `json:"stock" validate:"gte=0"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
