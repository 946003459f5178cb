// Package payments wraps the hosted-checkout provider: session creation on
// the way out, signed event verification on the way back in.
package payments

import (
	"context"
	"time"
)

// Correlation metadata keys embedded in every checkout session.
const (
	MetadataOrderID = "orderId"
	MetadataUserID  = "userId"
)

// LineItem is one priced line shown on the hosted checkout page.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutSessionRequest describes the session to create.
type CheckoutSessionRequest struct {
	Items          []LineItem
	Currency       string
	SuccessURL     string
	CancelURL      string
	CustomerEmail  string
	Metadata       map[string]string
	IdempotencyKey string
}

// CheckoutSession is the provider's handle for a hosted checkout.
type CheckoutSession struct {
	ID          string
	RedirectURL string
	ExpiresAt   time.Time
}

// Gateway creates hosted checkout sessions.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error)
}
