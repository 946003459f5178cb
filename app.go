package main

import (
	"context"
	"errors"
	"fmt"

	"tokoorder/internal/config"
	"tokoorder/internal/database"
	"tokoorder/internal/events"
	"tokoorder/internal/handlers"
	"tokoorder/internal/middleware"
	"tokoorder/internal/models"
	"tokoorder/internal/notify"
	"tokoorder/internal/payments"
	"tokoorder/internal/repositories"
	"tokoorder/internal/services"
	"tokoorder/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the HTTP server and every resource that must be released on
// shutdown.
type App struct {
	Fiber *fiber.App
	DB    *gorm.DB

	cfg     *config.Config
	log     *zap.Logger
	closers []func() error
}

// NewApp connects the database, builds the event pipeline and registers all
// routes. The caller owns the returned App and must Close it.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	app := &App{cfg: cfg, log: log}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		app.Close()
		return nil, err
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)
	orderRatingRepo := repositories.NewGORMOrderRatingRepository(db)

	// --- Events ---
	dispatcher := notify.NewDispatcher(userRepo, notify.NewLogNotifier(log), log)
	publisher, err := app.publisher(dispatcher)
	if err != nil {
		app.Close()
		return nil, err
	}

	// --- Payments ---
	var gateway payments.Gateway
	if cfg.Stripe.SecretKey != "" {
		stripeGateway, err := payments.NewStripeGateway(payments.StripeGatewayConfig{
			APIKey: cfg.Stripe.SecretKey,
			Logger: log,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to configure stripe: %w", err)
		}
		gateway = stripeGateway
	} else {
		log.Warn("stripe secret key not configured, online checkout is disabled")
	}
	verifier := payments.NewStripeEventVerifier(cfg.Stripe.WebhookSecret)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	orderService := services.NewOrderService(services.OrderServiceDeps{
		Orders:    orderRepo,
		Products:  productRepo,
		Addresses: addressRepo,
		Gateway:   gateway,
		Publisher: publisher,
		Checkout: services.CheckoutSettings{
			SuccessURL: cfg.Stripe.SuccessURL,
			CancelURL:  cfg.Stripe.CancelURL,
			Currency:   cfg.Stripe.Currency,
		},
		Logger: log,
	})
	statusService := services.NewStatusService(orderRepo, publisher, log)
	webhookService := services.NewWebhookService(verifier, orderRepo, log)
	ratingService := services.NewRatingService(ratingRepo, orderRepo, log)
	orderRatingService := services.NewOrderRatingService(orderRatingRepo, orderRepo, log)

	// --- Fiber ---
	app.Fiber = fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	app.Fiber.Use(recover.New())
	app.Fiber.Use(fiberlogger.New())

	auth := middleware.AuthRequired(authService, log)
	seller := middleware.RequireRole(models.RoleSeller)

	handlers.NewHealthHandler(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}, log).RegisterRoutes(app.Fiber)

	// --- API Routes ---
	apiV1 := app.Fiber.Group("/api/v1")
	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1)
	handlers.NewWebhookHandler(webhookService, log).RegisterRoutes(apiV1, middleware.RateLimit(cfg.Webhook.RateLimit, log))
	handlers.NewOrderHandler(orderService, statusService, log).RegisterRoutes(apiV1, auth, seller)
	handlers.NewRatingHandler(ratingService, log).RegisterRoutes(apiV1, auth)
	handlers.NewOrderRatingHandler(orderRatingService, log).RegisterRoutes(apiV1, auth)

	return app, nil
}

// publisher picks RabbitMQ when enabled, otherwise dispatches in process.
// Either way events end up at the dispatcher.
func (a *App) publisher(dispatcher *notify.Dispatcher) (events.Publisher, error) {
	if !a.cfg.RabbitMQ.Enabled {
		inProcess := events.NewInProcessPublisher(dispatcher.Handle, a.log)
		a.closers = append(a.closers, func() error {
			inProcess.Close()
			return nil
		})
		return inProcess, nil
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
		URL:   a.cfg.RabbitMQ.URL,
		Queue: a.cfg.RabbitMQ.Queue,
	}, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
	}
	a.closers = append(a.closers, mqClient.Close)

	if err := mqClient.ConsumeOrderEvents(dispatcher.Handle); err != nil {
		return nil, err
	}
	return mqClient, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
