package handlers

import (
	"tokoorder/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SignatureHeader carries the provider's payload signature.
const SignatureHeader = "Stripe-Signature"

// WebhookHandler receives payment provider callbacks. It has no session
// auth; the signature is the only credential.
type WebhookHandler struct {
	service *services.WebhookService
	log     *zap.Logger
}

func NewWebhookHandler(service *services.WebhookService, log *zap.Logger) *WebhookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookHandler{service: service, log: log.Named("webhook_handler")}
}

// RegisterRoutes mounts POST /order/webhook behind the given guards.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	chain := append(guards, h.HandleWebhook)
	router.Post("/order/webhook", chain...)
}

// HandleWebhook verifies and reconciles one delivery. Everything past the
// signature check is acknowledged with 200.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)

	outcome, err := h.service.HandleEvent(c.UserContext(), payload, c.Get(SignatureHeader))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Webhook received", fiber.Map{"outcome": outcome})
}
