package models

import "time"

// PaymentType is how an order is settled.
type PaymentType string

const (
	PaymentCashOnDelivery PaymentType = "CashOnDelivery"
	PaymentOnline         PaymentType = "Online"
)

// OrderItem is a single line of an order. UnitPrice is the offer price the
// amount was computed from and is never refreshed from the catalog.
type OrderItem struct {
	ID        uint   `json:"-" gorm:"primaryKey"`
	OrderID   string `json:"-" gorm:"type:varchar(36);index;not null"`
	ProductID string `json:"productId" gorm:"type:varchar(36);index;not null"`
	Quantity  int    `json:"quantity" gorm:"not null"`
	UnitPrice int64  `json:"unitPrice" gorm:"not null"`
}

// Order is a customer order. Registered orders carry BuyerID and AddressID;
// guest orders carry only GuestInfo.
type Order struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID           *string     `json:"buyerId,omitempty" gorm:"type:varchar(36);index"`
	AddressID         *string     `json:"addressId,omitempty" gorm:"type:varchar(36)"`
	GuestInfo         *GuestInfo  `json:"guestInfo,omitempty" gorm:"serializer:json"`
	Items             []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Amount            int64       `json:"amount" gorm:"not null"`
	PaymentType       PaymentType `json:"paymentType" gorm:"type:varchar(20);not null"`
	IsPaid            bool        `json:"isPaid" gorm:"not null"`
	Status            OrderStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	CheckoutSessionID string      `json:"checkoutSessionId,omitempty" gorm:"type:varchar(255)"`
	Version           int64       `json:"-" gorm:"not null"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// IsGuest reports whether the order was placed without an account.
func (o *Order) IsGuest() bool {
	return o.BuyerID == nil
}

// ContainsProduct reports whether productID is one of the order's lines.
func (o *Order) ContainsProduct(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// ProductIDs returns the distinct product ids of the order in line order.
func (o *Order) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
