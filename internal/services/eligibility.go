package services

import (
	"tokoorder/internal/apperror"
	"tokoorder/internal/models"
)

// Reasons reported when a rating gate fails.
const (
	ReasonUnpaid          = "unpaid"
	ReasonNotDelivered    = "not yet delivered"
	ReasonProductNotFound = "product not in order"
	ReasonOrderNotFound   = "order not found"
	ReasonAlreadyRated    = "already rated"
	ReasonNoEligibleOrder = "no delivered and paid order contains this product"
)

// Eligibility is the answer of a canRate probe.
type Eligibility struct {
	CanRate bool   `json:"canRate"`
	Reason  string `json:"reason,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

// orderEligible applies the shared gate: paid, then fulfilled.
func orderEligible(order *models.Order) error {
	if !order.IsPaid {
		return apperror.NotEligible(ReasonUnpaid)
	}
	if !order.Status.Fulfilled() {
		return apperror.NotEligible(ReasonNotDelivered)
	}
	return nil
}

// productEligible additionally requires productID among the order lines.
func productEligible(order *models.Order, productID string) error {
	if err := orderEligible(order); err != nil {
		return err
	}
	if !order.ContainsProduct(productID) {
		return apperror.NotEligible(ReasonProductNotFound)
	}
	return nil
}

// denied converts a gate failure into a negative probe answer. Errors that
// are not gate failures are returned as-is.
func denied(err error) (Eligibility, error) {
	if appErr, ok := apperror.As(err); ok {
		switch appErr.Code {
		case apperror.CodeNotEligible, apperror.CodeDuplicateRating:
			return Eligibility{Reason: appErr.Message}, nil
		case apperror.CodeNotFoundOrForbidden:
			return Eligibility{Reason: ReasonOrderNotFound}, nil
		}
	}
	return Eligibility{}, err
}
