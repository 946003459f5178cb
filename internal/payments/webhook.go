package payments

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Provider-neutral event types the reconciler acts on.
const (
	EventCheckoutCompleted = "checkout_completed"
	EventPaymentConfirmed  = "payment_confirmed"
)

// ErrInvalidSignature is returned when a payload does not carry a valid
// signature for the configured secret.
var ErrInvalidSignature = errors.New("payments: invalid webhook signature")

// Event is a verified provider event reduced to what reconciliation needs.
// Type is one of the Event* constants, or the provider's raw type when the
// event is not one the service acts on.
type Event struct {
	ID      string
	Type    string
	OrderID string
	UserID  string
}

// Recognized reports whether the reconciler acts on this event type.
func (e Event) Recognized() bool {
	return e.Type == EventCheckoutCompleted || e.Type == EventPaymentConfirmed
}

// EventVerifier authenticates and parses raw webhook deliveries.
type EventVerifier interface {
	Verify(payload []byte, signatureHeader string) (Event, error)
}

// StripeEventVerifier checks the Stripe-Signature header against the
// endpoint secret. The secret is fixed at construction.
type StripeEventVerifier struct {
	secret string
}

func NewStripeEventVerifier(secret string) *StripeEventVerifier {
	return &StripeEventVerifier{secret: secret}
}

// Verify validates the signature and extracts correlation metadata.
func (v *StripeEventVerifier) Verify(payload []byte, signatureHeader string) (Event, error) {
	if v.secret == "" {
		return Event{}, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}
	if signatureHeader == "" {
		return Event{}, fmt.Errorf("%w: signature header missing", ErrInvalidSignature)
	}

	raw, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	event := Event{ID: raw.ID, Type: string(raw.Type)}
	if raw.Data == nil {
		return event, nil
	}
	var metadata map[string]string

	switch string(raw.Type) {
	case "checkout.session.completed":
		event.Type = EventCheckoutCompleted
		var session stripe.CheckoutSession
		if err := json.Unmarshal(raw.Data.Raw, &session); err != nil {
			return Event{}, fmt.Errorf("payments: decode checkout session: %w", err)
		}
		metadata = session.Metadata
	case "payment_intent.succeeded":
		event.Type = EventPaymentConfirmed
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(raw.Data.Raw, &intent); err != nil {
			return Event{}, fmt.Errorf("payments: decode payment intent: %w", err)
		}
		metadata = intent.Metadata
	}

	event.OrderID = metadata[MetadataOrderID]
	event.UserID = metadata[MetadataUserID]
	return event, nil
}

var _ EventVerifier = (*StripeEventVerifier)(nil)
