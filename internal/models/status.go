package models

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPlaced     OrderStatus = "Placed"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCompleted  OrderStatus = "Completed"
	StatusCancelled  OrderStatus = "Cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Fulfilled reports whether the goods reached the buyer.
func (s OrderStatus) Fulfilled() bool {
	return s == StatusDelivered || s == StatusCompleted
}

// CanTransition reports whether an order may move from one status to another.
// The lifecycle is Placed -> Processing -> Shipped -> Delivered|Cancelled and
// Delivered -> Completed, but any known status may overwrite any other,
// including backward moves. Add a transition table here to tighten it.
func CanTransition(from, to OrderStatus) bool {
	return from.Valid() && to.Valid()
}
