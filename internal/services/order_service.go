package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"tokoorder/internal/apperror"
	"tokoorder/internal/events"
	"tokoorder/internal/models"
	"tokoorder/internal/payments"
	"tokoorder/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceOrderRequest is the body of the registered-buyer order endpoints.
// Address is the id of an entry in the buyer's address book.
type PlaceOrderRequest struct {
	Items   []LineItem `json:"items" validate:"required,min=1,dive"`
	Address string     `json:"address" validate:"required"`
}

// GuestOrderRequest is the body of the guest order endpoint.
type GuestOrderRequest struct {
	Items   []LineItem             `json:"items" validate:"required,min=1,dive"`
	Address models.AddressSnapshot `json:"address"`
	Name    string                 `json:"name" validate:"required,max=120"`
	Email   string                 `json:"email" validate:"required,email"`
	Phone   string                 `json:"phone" validate:"omitempty,max=32"`
}

// CheckoutRedirect is returned by online order placement.
type CheckoutRedirect struct {
	Order       *models.Order `json:"order"`
	RedirectURL string        `json:"redirectUrl"`
	SessionID   string        `json:"sessionId"`
}

// CheckoutSettings are the redirect targets and currency for hosted checkout.
type CheckoutSettings struct {
	SuccessURL string
	CancelURL  string
	Currency   string
}

// OrderServiceDeps groups the collaborators of OrderService. Gateway may be
// nil when online payment is not configured.
type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Products  repositories.ProductRepository
	Addresses repositories.AddressRepository
	Gateway   payments.Gateway
	Publisher events.Publisher
	Checkout  CheckoutSettings
	Logger    *zap.Logger
}

// OrderService places and reads orders.
type OrderService struct {
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	addresses repositories.AddressRepository
	gateway   payments.Gateway
	publisher events.Publisher
	checkout  CheckoutSettings
	validate  *validator.Validate
	log       *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(deps OrderServiceDeps) *OrderService {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		orders:    deps.Orders,
		products:  deps.Products,
		addresses: deps.Addresses,
		gateway:   deps.Gateway,
		publisher: publisher,
		checkout:  deps.Checkout,
		validate:  newValidator(),
		log:       log.Named("order_service"),
	}
}

// PlaceCashOnDelivery creates an unpaid COD order for an authenticated buyer.
func (s *OrderService) PlaceCashOnDelivery(ctx context.Context, buyerID string, req PlaceOrderRequest) (*models.Order, error) {
	order, _, err := s.placeRegistered(ctx, "place_cod", buyerID, req, models.PaymentCashOnDelivery)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// PlaceOnline creates an unpaid order and then a hosted checkout session for
// it. The order is kept if the session cannot be created.
func (s *OrderService) PlaceOnline(ctx context.Context, buyerID string, req PlaceOrderRequest) (*CheckoutRedirect, error) {
	order, quote, err := s.placeRegistered(ctx, "place_online", buyerID, req, models.PaymentOnline)
	if err != nil {
		return nil, err
	}

	log := s.log.With(zap.String("operation", "place_online"), zap.String("order_id", order.ID), zap.String("user_id", buyerID))

	if s.gateway == nil {
		log.Error("online payment requested but no payment gateway is configured")
		return nil, apperror.PaymentGateway(errors.New("payment gateway not configured"))
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, s.sessionRequest(order, quote, buyerID))
	if err != nil {
		log.Error("checkout session creation failed; order left unpaid", zap.Error(err))
		return nil, apperror.PaymentGateway(err)
	}

	if err := s.orders.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		log.Warn("failed to record checkout session id", zap.String("session_id", session.ID), zap.Error(err))
	} else {
		order.CheckoutSessionID = session.ID
	}

	return &CheckoutRedirect{
		Order:       order,
		RedirectURL: session.RedirectURL,
		SessionID:   session.ID,
	}, nil
}

// PlaceGuest creates a COD order for a buyer without an account.
func (s *OrderService) PlaceGuest(ctx context.Context, req GuestOrderRequest) (*models.Order, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID: uuid.New().String(),
		GuestInfo: &models.GuestInfo{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		},
		Items:       quote.OrderItems(req.Items),
		Amount:      quote.Amount,
		PaymentType: models.PaymentCashOnDelivery,
		Status:      models.StatusPlaced,
	}
	if err := s.persist(ctx, "place_guest", order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) placeRegistered(ctx context.Context, op, buyerID string, req PlaceOrderRequest, paymentType models.PaymentType) (*models.Order, *Quote, error) {
	if buyerID == "" {
		return nil, nil, apperror.Unauthorized("authentication required")
	}
	if err := validateRequest(s.validate, req); err != nil {
		return nil, nil, err
	}

	address, err := s.addresses.GetForUser(ctx, req.Address, buyerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, apperror.NotFoundOrForbidden("address not found")
		}
		s.log.Error("address lookup failed", zap.String("operation", op), zap.String("user_id", buyerID), zap.Error(err))
		return nil, nil, apperror.OrderCreation(err)
	}

	quote, err := s.quote(ctx, req.Items)
	if err != nil {
		return nil, nil, err
	}

	buyer := buyerID
	addressID := address.ID
	order := &models.Order{
		ID:          uuid.New().String(),
		BuyerID:     &buyer,
		AddressID:   &addressID,
		Items:       quote.OrderItems(req.Items),
		Amount:      quote.Amount,
		PaymentType: paymentType,
		Status:      models.StatusPlaced,
	}
	if err := s.persist(ctx, op, order); err != nil {
		return nil, nil, err
	}
	return order, quote, nil
}

// quote reads a catalog snapshot for the requested products and prices them.
func (s *OrderService) quote(ctx context.Context, items []LineItem) (*Quote, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		s.log.Error("catalog lookup failed", zap.Strings("product_ids", ids), zap.Error(err))
		return nil, apperror.OrderCreation(err)
	}
	return CalculateAmount(items, NewCatalog(products))
}

func (s *OrderService) persist(ctx context.Context, op string, order *models.Order) error {
	if err := s.orders.Create(ctx, order); err != nil {
		s.log.Error("order insert failed", zap.String("operation", op), zap.String("order_id", order.ID), zap.Error(err))
		return apperror.OrderCreation(err)
	}

	s.log.Info("order placed",
		zap.String("operation", op),
		zap.String("order_id", order.ID),
		zap.String("payment_type", string(order.PaymentType)),
		zap.Int64("amount", order.Amount),
	)

	if err := s.publisher.Publish(ctx, events.NewOrderEvent(events.TypeOrderCreated, order)); err != nil {
		s.log.Warn("failed to publish order created event", zap.String("order_id", order.ID), zap.Error(err))
	}
	return nil
}

func (s *OrderService) sessionRequest(order *models.Order, quote *Quote, buyerID string) payments.CheckoutSessionRequest {
	items := make([]payments.LineItem, 0, len(order.Items)+1)
	for i, line := range order.Items {
		items = append(items, payments.LineItem{
			Name:       quote.Products[i].Name,
			UnitAmount: line.UnitPrice,
			Quantity:   int64(line.Quantity),
		})
	}
	if quote.Tax > 0 {
		items = append(items, payments.LineItem{Name: "Tax", UnitAmount: quote.Tax, Quantity: 1})
	}

	return payments.CheckoutSessionRequest{
		Items:      items,
		Currency:   s.checkout.Currency,
		SuccessURL: withOrderID(s.checkout.SuccessURL, order.ID),
		CancelURL:  withOrderID(s.checkout.CancelURL, order.ID),
		Metadata: map[string]string{
			payments.MetadataOrderID: order.ID,
			payments.MetadataUserID:  buyerID,
		},
		IdempotencyKey: "checkout-" + order.ID,
	}
}

func withOrderID(base, orderID string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("orderId", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}

// ListForBuyer returns the buyer's orders, newest first.
func (s *OrderService) ListForBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		s.log.Error("list buyer orders failed", zap.String("user_id", buyerID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return orders, nil
}

// ListForSeller returns orders containing at least one of the seller's products.
func (s *OrderService) ListForSeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	orders, err := s.orders.ListBySeller(ctx, sellerID)
	if err != nil {
		s.log.Error("list seller orders failed", zap.String("user_id", sellerID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return orders, nil
}

// GetForBuyer returns one of the buyer's orders.
func (s *OrderService) GetForBuyer(ctx context.Context, orderID, buyerID string) (*models.Order, error) {
	order, err := s.orders.GetByIDForBuyer(ctx, orderID, buyerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFoundOrForbidden("order not found")
		}
		s.log.Error("get order failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, apperror.Internal(err)
	}
	return order, nil
}

// DeleteForSeller removes an order that contains one of the seller's products.
func (s *OrderService) DeleteForSeller(ctx context.Context, orderID, sellerID string) error {
	owns, err := s.orders.SellerOwnsProductIn(ctx, orderID, sellerID)
	if err != nil {
		s.log.Error("ownership check failed", zap.String("order_id", orderID), zap.String("user_id", sellerID), zap.Error(err))
		return apperror.Internal(err)
	}
	if !owns {
		return apperror.NotFoundOrForbidden("order not found")
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperror.NotFoundOrForbidden("order not found")
		}
		s.log.Error("delete order failed", zap.String("order_id", orderID), zap.Error(err))
		return apperror.Internal(fmt.Errorf("delete order %s: %w", orderID, err))
	}

	s.log.Info("order deleted", zap.String("order_id", orderID), zap.String("user_id", sellerID))
	return nil
}
