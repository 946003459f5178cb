package models

import "time"

// Address is an entry in a registered user's address book.
type Address struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	FullName   string    `json:"fullName"`
	Phone      string    `json:"phone"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AddressSnapshot is an address copied inline into an order.
type AddressSnapshot struct {
	FullName   string `json:"fullName" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"omitempty,max=60"`
}

// GuestInfo identifies a buyer without an account.
type GuestInfo struct {
	Name    string          `json:"name" validate:"required,max=120"`
	Email   string          `json:"email" validate:"required,email"`
	Phone   string          `json:"phone" validate:"omitempty,max=32"`
	Address AddressSnapshot `json:"address" validate:"required"`
}
