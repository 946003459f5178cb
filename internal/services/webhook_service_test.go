package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tokoorder/internal/apperror"
	"tokoorder/internal/payments"
	"tokoorder/internal/repositories"
	"tokoorder/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWebhookService_HandleEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    payments.Event
		markPaid func(*MockOrderRepository)
		want     services.WebhookOutcome
	}{
		{
			name:  "checkout completed marks paid",
			event: payments.Event{ID: "evt_1", Type: payments.EventCheckoutCompleted, OrderID: "o1", UserID: "u1"},
			markPaid: func(m *MockOrderRepository) {
				m.On("MarkPaid", "o1").Return(true, nil).Once()
			},
			want: services.OutcomePaid,
		},
		{
			name:  "payment confirmed after checkout is a no-op",
			event: payments.Event{ID: "evt_2", Type: payments.EventPaymentConfirmed, OrderID: "o1"},
			markPaid: func(m *MockOrderRepository) {
				m.On("MarkPaid", "o1").Return(false, nil).Once()
			},
			want: services.OutcomeAlreadyPaid,
		},
		{
			name:  "unrecognized type ignored",
			event: payments.Event{ID: "evt_3", Type: "charge.refunded", OrderID: "o1"},
			want:  services.OutcomeIgnored,
		},
		{
			name:  "missing order id",
			event: payments.Event{ID: "evt_4", Type: payments.EventCheckoutCompleted},
			want:  services.OutcomeMissingOrderID,
		},
		{
			name:  "unknown order",
			event: payments.Event{ID: "evt_5", Type: payments.EventCheckoutCompleted, OrderID: "ghost"},
			markPaid: func(m *MockOrderRepository) {
				m.On("MarkPaid", "ghost").Return(false, fmt.Errorf("order ghost: %w", repositories.ErrNotFound)).Once()
			},
			want: services.OutcomeOrderNotFound,
		},
		{
			name:  "store failure is acknowledged",
			event: payments.Event{ID: "evt_6", Type: payments.EventPaymentConfirmed, OrderID: "o1"},
			markPaid: func(m *MockOrderRepository) {
				m.On("MarkPaid", "o1").Return(false, errors.New("connection refused")).Once()
			},
			want: services.OutcomeStoreFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(MockVerifier)
			orders := new(MockOrderRepository)
			svc := services.NewWebhookService(verifier, orders, nil)

			verifier.On("Verify", "payload", "sig").Return(tt.event, nil).Once()
			if tt.markPaid != nil {
				tt.markPaid(orders)
			}

			outcome, err := svc.HandleEvent(context.Background(), []byte("payload"), "sig")
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome)

			orders.AssertExpectations(t)
			if tt.markPaid == nil {
				orders.AssertNotCalled(t, "MarkPaid", mock.Anything)
			}
		})
	}
}

func TestWebhookService_RejectsBadSignature(t *testing.T) {
	verifier := new(MockVerifier)
	orders := new(MockOrderRepository)
	svc := services.NewWebhookService(verifier, orders, nil)

	verifier.On("Verify", "payload", "forged").
		Return(payments.Event{}, fmt.Errorf("%w: no valid signature", payments.ErrInvalidSignature)).Once()

	_, err := svc.HandleEvent(context.Background(), []byte("payload"), "forged")
	assert.True(t, apperror.Is(err, apperror.CodeSignatureVerification))
	assert.ErrorIs(t, err, payments.ErrInvalidSignature)
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything)
}

func TestWebhookService_DuplicateDeliveryAppliesOnce(t *testing.T) {
	verifier := new(MockVerifier)
	orders := new(MockOrderRepository)
	svc := services.NewWebhookService(verifier, orders, nil)

	event := payments.Event{ID: "evt_1", Type: payments.EventCheckoutCompleted, OrderID: "o1"}
	verifier.On("Verify", "payload", "sig").Return(event, nil).Twice()
	orders.On("MarkPaid", "o1").Return(true, nil).Once()
	orders.On("MarkPaid", "o1").Return(false, nil).Once()

	first, err := svc.HandleEvent(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)
	second, err := svc.HandleEvent(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)

	assert.Equal(t, services.OutcomePaid, first)
	assert.Equal(t, services.OutcomeAlreadyPaid, second)
}
