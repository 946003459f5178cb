package services_test

import (
	"context"

	"tokoorder/internal/events"
	"tokoorder/internal/models"
	"tokoorder/internal/payments"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) order(args mock.Arguments) (*models.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return m.Called(order).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return m.order(m.Called(id))
}

func (m *MockOrderRepository) GetByIDForBuyer(ctx context.Context, id, buyerID string) (*models.Order, error) {
	return m.order(m.Called(id, buyerID))
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	args := m.Called(buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	args := m.Called(sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return m.order(m.Called(id, status))
}

func (m *MockOrderRepository) SetPaid(ctx context.Context, id string, isPaid bool) (*models.Order, error) {
	return m.order(m.Called(id, isPaid))
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetCheckoutSession(ctx context.Context, id, sessionID string) error {
	return m.Called(id, sessionID).Error(0)
}

func (m *MockOrderRepository) SellerOwnsProductIn(ctx context.Context, orderID, sellerID string) (bool, error) {
	args := m.Called(orderID, sellerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(product).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(product).Error(0)
}

// MockAddressRepository is a mock implementation of repositories.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) GetForUser(ctx context.Context, id, userID string) (*models.Address, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) Create(ctx context.Context, address *models.Address) error {
	return m.Called(address).Error(0)
}

// MockRatingRepository is a mock implementation of repositories.RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) rating(args mock.Arguments) (*models.Rating, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return m.Called(rating).Error(0)
}

func (m *MockRatingRepository) GetByID(ctx context.Context, id string) (*models.Rating, error) {
	return m.rating(m.Called(id))
}

func (m *MockRatingRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.Rating, error) {
	return m.rating(m.Called(userID, productID))
}

func (m *MockRatingRepository) Update(ctx context.Context, rating *models.Rating) error {
	return m.Called(rating).Error(0)
}

func (m *MockRatingRepository) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockRatingRepository) ListByProduct(ctx context.Context, productID string) ([]models.Rating, error) {
	args := m.Called(productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Rating), args.Error(1)
}

func (m *MockRatingRepository) SummaryByProduct(ctx context.Context, productID string) (models.RatingSummary, error) {
	args := m.Called(productID)
	return args.Get(0).(models.RatingSummary), args.Error(1)
}

// MockOrderRatingRepository is a mock implementation of repositories.OrderRatingRepository
type MockOrderRatingRepository struct {
	mock.Mock
}

func (m *MockOrderRatingRepository) rating(args mock.Arguments) (*models.OrderRating, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderRating), args.Error(1)
}

func (m *MockOrderRatingRepository) Create(ctx context.Context, rating *models.OrderRating) error {
	return m.Called(rating).Error(0)
}

func (m *MockOrderRatingRepository) GetByID(ctx context.Context, id string) (*models.OrderRating, error) {
	return m.rating(m.Called(id))
}

func (m *MockOrderRatingRepository) FindByUserAndOrder(ctx context.Context, userID, orderID string) (*models.OrderRating, error) {
	return m.rating(m.Called(userID, orderID))
}

func (m *MockOrderRatingRepository) Update(ctx context.Context, rating *models.OrderRating) error {
	return m.Called(rating).Error(0)
}

func (m *MockOrderRatingRepository) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

// MockGateway is a mock implementation of payments.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
	args := m.Called(req)
	return args.Get(0).(payments.CheckoutSession), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	return m.Called(event).Error(0)
}

// MockVerifier is a mock implementation of payments.EventVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(payload []byte, signature string) (payments.Event, error) {
	args := m.Called(string(payload), signature)
	return args.Get(0).(payments.Event), args.Error(1)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
