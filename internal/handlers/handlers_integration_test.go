package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tokoorder/internal/config"
	"tokoorder/internal/database"
	"tokoorder/internal/events"
	"tokoorder/internal/handlers"
	"tokoorder/internal/middleware"
	"tokoorder/internal/models"
	"tokoorder/internal/payments"
	"tokoorder/internal/repositories"
	"tokoorder/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testJWTSecret     = "test_jwt_secret"
	testWebhookSecret = "whsec_integration"
)

type fakeGateway struct {
	mu       sync.Mutex
	requests []payments.CheckoutSessionRequest
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payments.CheckoutSessionRequest) (payments.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	id := fmt.Sprintf("cs_test_%d", len(g.requests))
	return payments.CheckoutSession{ID: id, RedirectURL: "https://checkout.example/" + id}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.OrderEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	app       *fiber.App
	auth      *services.AuthService
	products  *repositories.GORMProductRepository
	addresses *repositories.GORMAddressRepository
	gateway   *fakeGateway
	publisher *recordingPublisher
}

// setupApp wires every handler against a private in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := zap.NewNop()
	env := &testEnv{
		products:  repositories.NewGORMProductRepository(db),
		addresses: repositories.NewGORMAddressRepository(db),
		gateway:   &fakeGateway{},
		publisher: &recordingPublisher{},
	}
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	env.auth = services.NewAuthService(userRepo, testJWTSecret, time.Hour, log)
	orderService := services.NewOrderService(services.OrderServiceDeps{
		Orders:    orderRepo,
		Products:  env.products,
		Addresses: env.addresses,
		Gateway:   env.gateway,
		Publisher: env.publisher,
		Checkout: services.CheckoutSettings{
			SuccessURL: "http://localhost:3000/payment/success",
			CancelURL:  "http://localhost:3000/payment/cancel",
			Currency:   "inr",
		},
		Logger: log,
	})
	statusService := services.NewStatusService(orderRepo, env.publisher, log)
	webhookService := services.NewWebhookService(payments.NewStripeEventVerifier(testWebhookSecret), orderRepo, log)
	ratingService := services.NewRatingService(repositories.NewGORMRatingRepository(db), orderRepo, log)
	orderRatingService := services.NewOrderRatingService(repositories.NewGORMOrderRatingRepository(db), orderRepo, log)

	app := fiber.New()
	auth := middleware.AuthRequired(env.auth, log)
	seller := middleware.RequireRole(models.RoleSeller)

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(env.auth, log).RegisterRoutes(apiV1)
	handlers.NewWebhookHandler(webhookService, log).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService, statusService, log).RegisterRoutes(apiV1, auth, seller)
	handlers.NewRatingHandler(ratingService, log).RegisterRoutes(apiV1, auth)
	handlers.NewOrderRatingHandler(orderRatingService, log).RegisterRoutes(apiV1, auth)

	env.app = app
	return env
}

// account registers a user through the API and returns its id and token.
func (env *testEnv) account(t *testing.T, username, role string) (string, string) {
	t.Helper()
	status, body := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, status, body)
	user := body["user"].(map[string]interface{})

	status, body = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status, body)
	return user["id"].(string), body["token"].(string)
}

func (env *testEnv) seedProduct(t *testing.T, sellerID string, offerPrice int64) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:   sellerID,
		Name:       "Product One",
		Price:      offerPrice + 100,
		OfferPrice: offerPrice,
		Stock:      10,
	}
	require.NoError(t, env.products.Create(context.Background(), product))
	return product
}

func (env *testEnv) seedAddress(t *testing.T, userID string) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:     userID,
		FullName:   "Test Buyer",
		Phone:      "5550100",
		Line1:      "1 Market Street",
		City:       "Bandung",
		PostalCode: "40111",
		Country:    "ID",
	}
	require.NoError(t, env.addresses.Create(context.Background(), address))
	return address
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return env.send(t, req)
}

func (env *testEnv) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func signWebhook(payload []byte, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.", ts)))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func (env *testEnv) postWebhook(t *testing.T, payload []byte, signature string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/order/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(handlers.SignatureHeader, signature)
	}
	return env.send(t, req)
}

func checkoutCompleted(orderID, userID string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_%s","object":"event","api_version":"2020-08-27","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session","metadata":{"orderId":%q,"userId":%q}}}}`,
		uuid.NewString(), orderID, userID))
}

func TestOrderLifecycleThroughRating(t *testing.T) {
	env := setupApp(t)
	sellerID, sellerToken := env.account(t, "seller1", models.RoleSeller)
	buyerID, buyerToken := env.account(t, "buyer1", models.RoleBuyer)
	product := env.seedProduct(t, sellerID, 500)
	address := env.seedAddress(t, buyerID)

	// 2 x 500 = 1000, plus floor(1000 * 2%) = 20
	status, body := env.do(t, http.MethodPost, "/api/v1/order/cod", buyerToken, map[string]interface{}{
		"items":   []map[string]interface{}{{"productId": product.ID, "quantity": 2}},
		"address": address.ID,
	})
	require.Equal(t, http.StatusCreated, status, body)
	order := body["order"].(map[string]interface{})
	orderID := order["id"].(string)
	assert.Equal(t, float64(1020), order["amount"])
	assert.Equal(t, "CashOnDelivery", order["paymentType"])
	assert.Equal(t, false, order["isPaid"])
	assert.Len(t, env.publisher.ofType(events.TypeOrderCreated), 1)

	// a later price change must not touch the stored amount
	product.OfferPrice = 900
	require.NoError(t, env.products.Update(context.Background(), product))
	status, body = env.do(t, http.MethodGet, "/api/v1/order/"+orderID, buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1020), body["order"].(map[string]interface{})["amount"])

	status, body = env.do(t, http.MethodGet, "/api/v1/order-rating/can-rate/"+orderID, buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["canRate"])

	status, _ = env.do(t, http.MethodPut, "/api/v1/order/status", buyerToken, map[string]interface{}{
		"orderId": orderID, "status": "Delivered",
	})
	assert.Equal(t, http.StatusForbidden, status, "buyers cannot move order status")

	status, body = env.do(t, http.MethodPut, "/api/v1/order/status", sellerToken, map[string]interface{}{
		"orderId": orderID, "status": "Delivered",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Empty(t, env.publisher.ofType(events.TypeFeedbackDue), "unpaid orders do not trigger feedback")

	status, body = env.do(t, http.MethodPut, "/api/v1/order/payment", sellerToken, map[string]interface{}{
		"orderId": orderID, "isPaid": true,
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["order"].(map[string]interface{})["isPaid"])

	status, body = env.do(t, http.MethodPut, "/api/v1/order/status", sellerToken, map[string]interface{}{
		"orderId": orderID, "status": "Completed",
	})
	require.Equal(t, http.StatusOK, status, body)
	feedback := env.publisher.ofType(events.TypeFeedbackDue)
	require.Len(t, feedback, 1)
	assert.Equal(t, orderID, feedback[0].OrderID)
	assert.Equal(t, buyerID, feedback[0].BuyerID)

	status, body = env.do(t, http.MethodGet, "/api/v1/order-rating/can-rate/"+orderID, buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["canRate"])

	rating := map[string]interface{}{"orderId": orderID, "overallRating": 5, "tags": []string{"fast_delivery"}}
	status, body = env.do(t, http.MethodPost, "/api/v1/order-rating/create", buyerToken, rating)
	require.Equal(t, http.StatusCreated, status, body)

	status, body = env.do(t, http.MethodPost, "/api/v1/order-rating/create", buyerToken, rating)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_RATING", body["code"])

	status, body = env.do(t, http.MethodPost, "/api/v1/rating/create", buyerToken, map[string]interface{}{
		"productId": product.ID, "orderId": orderID, "rating": 4, "review": "solid",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = env.do(t, http.MethodGet, "/api/v1/rating/product/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["totalCount"])
	assert.Equal(t, float64(4), body["averageRating"])

	status, body = env.do(t, http.MethodGet, "/api/v1/rating/can-rate/"+product.ID, buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["canRate"])
}

func TestOnlineOrderPaidByWebhook(t *testing.T) {
	env := setupApp(t)
	sellerID, _ := env.account(t, "seller2", models.RoleSeller)
	buyerID, buyerToken := env.account(t, "buyer2", models.RoleBuyer)
	product := env.seedProduct(t, sellerID, 250)
	address := env.seedAddress(t, buyerID)

	status, body := env.do(t, http.MethodPost, "/api/v1/order/online", buyerToken, map[string]interface{}{
		"items":   []map[string]interface{}{{"productId": product.ID, "quantity": 1}},
		"address": address.ID,
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "https://checkout.example/cs_test_1", body["redirectUrl"])
	orderID := body["order"].(map[string]interface{})["id"].(string)

	require.Len(t, env.gateway.requests, 1)
	assert.Equal(t, orderID, env.gateway.requests[0].Metadata[payments.MetadataOrderID])
	assert.Equal(t, buyerID, env.gateway.requests[0].Metadata[payments.MetadataUserID])

	payload := checkoutCompleted(orderID, buyerID)

	status, body = env.postWebhook(t, payload, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SIGNATURE_VERIFICATION_ERROR", body["code"])

	status, body = env.postWebhook(t, payload, signWebhook(payload, time.Now()))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "paid", body["outcome"])

	// redelivery is acknowledged without a second write
	status, body = env.postWebhook(t, payload, signWebhook(payload, time.Now()))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "already_paid", body["outcome"])

	status, body = env.do(t, http.MethodGet, "/api/v1/order/"+orderID, buyerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["order"].(map[string]interface{})["isPaid"])

	unknown := checkoutCompleted(uuid.NewString(), buyerID)
	status, body = env.postWebhook(t, unknown, signWebhook(unknown, time.Now()))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "order_not_found", body["outcome"])
}

func TestGuestOrder(t *testing.T) {
	env := setupApp(t)
	sellerID, sellerToken := env.account(t, "seller3", models.RoleSeller)
	product := env.seedProduct(t, sellerID, 100)

	status, body := env.do(t, http.MethodPost, "/api/v1/order/guest", "", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": product.ID, "quantity": 3}},
		"name":  "Guest Buyer",
		"email": "guest@example.com",
		"address": map[string]string{
			"fullName":   "Guest Buyer",
			"phone":      "5550199",
			"line1":      "9 Side Road",
			"city":       "Jakarta",
			"postalCode": "10110",
		},
	})
	require.Equal(t, http.StatusCreated, status, body)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, float64(306), order["amount"])
	assert.Equal(t, "CashOnDelivery", order["paymentType"])
	assert.Nil(t, order["buyerId"])
	assert.Equal(t, "guest@example.com", order["guestInfo"].(map[string]interface{})["email"])

	status, body = env.do(t, http.MethodGet, "/api/v1/order/seller", sellerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["orders"], 1)

	status, body = env.do(t, http.MethodPost, "/api/v1/order/guest", "", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": product.ID, "quantity": 1}},
		"name":  "Guest Buyer",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestSellerDeleteRequiresOwnership(t *testing.T) {
	env := setupApp(t)
	sellerID, sellerToken := env.account(t, "seller4", models.RoleSeller)
	_, otherToken := env.account(t, "seller5", models.RoleSeller)
	buyerID, buyerToken := env.account(t, "buyer4", models.RoleBuyer)
	product := env.seedProduct(t, sellerID, 100)
	address := env.seedAddress(t, buyerID)

	status, body := env.do(t, http.MethodPost, "/api/v1/order/cod", buyerToken, map[string]interface{}{
		"items":   []map[string]interface{}{{"productId": product.ID, "quantity": 1}},
		"address": address.ID,
	})
	require.Equal(t, http.StatusCreated, status, body)
	orderID := body["order"].(map[string]interface{})["id"].(string)

	status, _ = env.do(t, http.MethodDelete, "/api/v1/order/"+orderID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodDelete, "/api/v1/order/"+orderID, sellerToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/order/"+orderID, buyerToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
