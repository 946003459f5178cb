package notify_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tokoorder/internal/events"
	"tokoorder/internal/models"
	"tokoorder/internal/notify"
	"tokoorder/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendFeedbackReminder(ctx context.Context, r notify.FeedbackReminder) error {
	return m.Called(ctx, r).Error(0)
}

func TestDispatcher_FeedbackDue(t *testing.T) {
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	d := notify.NewDispatcher(users, notifier, nil)

	users.On("GetByID", mock.Anything, "buyer-1").
		Return(&models.User{ID: "buyer-1", Username: "ana", Email: "ana@example.com"}, nil).Once()
	notifier.On("SendFeedbackReminder", mock.Anything, notify.FeedbackReminder{
		OrderID:  "o1",
		BuyerID:  "buyer-1",
		Username: "ana",
		Email:    "ana@example.com",
		Status:   models.StatusDelivered,
	}).Return(nil).Once()

	err := d.Handle(context.Background(), events.OrderEvent{
		Type:    events.TypeFeedbackDue,
		OrderID: "o1",
		BuyerID: "buyer-1",
		Status:  models.StatusDelivered,
	})
	require.NoError(t, err)
	users.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestDispatcher_FeedbackDueUnknownBuyer(t *testing.T) {
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	d := notify.NewDispatcher(users, notifier, nil)

	users.On("GetByID", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("user ghost: %w", repositories.ErrNotFound)).Once()

	err := d.Handle(context.Background(), events.OrderEvent{Type: events.TypeFeedbackDue, OrderID: "o1", BuyerID: "ghost"})
	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "SendFeedbackReminder", mock.Anything, mock.Anything)
}

func TestDispatcher_FeedbackDueRepositoryFailure(t *testing.T) {
	users := new(MockUserRepository)
	d := notify.NewDispatcher(users, new(MockNotifier), nil)

	users.On("GetByID", mock.Anything, "buyer-1").Return(nil, errors.New("connection reset")).Once()

	err := d.Handle(context.Background(), events.OrderEvent{Type: events.TypeFeedbackDue, OrderID: "o1", BuyerID: "buyer-1"})
	assert.Error(t, err)
}

func TestDispatcher_IgnoresOtherEvents(t *testing.T) {
	users := new(MockUserRepository)
	notifier := new(MockNotifier)
	d := notify.NewDispatcher(users, notifier, nil)

	assert.NoError(t, d.Handle(context.Background(), events.OrderEvent{Type: events.TypeOrderCreated, OrderID: "o1"}))
	assert.NoError(t, d.Handle(context.Background(), events.OrderEvent{Type: "order.archived", OrderID: "o1"}))
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, notify.NewLogNotifier(nil).SendFeedbackReminder(context.Background(), notify.FeedbackReminder{OrderID: "o1"}))
}
