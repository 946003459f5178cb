package handlers

import (
	"tokoorder/internal/middleware"
	"tokoorder/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderRatingHandler handles order-experience ratings.
type OrderRatingHandler struct {
	service *services.OrderRatingService
	log     *zap.Logger
}

func NewOrderRatingHandler(service *services.OrderRatingService, log *zap.Logger) *OrderRatingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderRatingHandler{service: service, log: log.Named("order_rating_handler")}
}

func (h *OrderRatingHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	routes := router.Group("/order-rating", auth)
	routes.Post("/create", h.HandleCreate)
	routes.Get("/can-rate/:orderId", h.HandleCanRate)
	routes.Get("/order/:orderId", h.HandleGetForOrder)
	routes.Put("/:ratingId", h.HandleUpdate)
	routes.Delete("/:ratingId", h.HandleDelete)
}

func (h *OrderRatingHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.CreateOrderRatingRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	rating, err := h.service.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusCreated, "Order rating submitted", fiber.Map{"rating": rating})
}

func (h *OrderRatingHandler) HandleCanRate(c *fiber.Ctx) error {
	result, err := h.service.CanRate(c.UserContext(), middleware.UserID(c), c.Params("orderId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, eligibilityMessage(result), fiber.Map{
		"canRate": result.CanRate,
		"reason":  result.Reason,
		"orderId": result.OrderID,
	})
}

func (h *OrderRatingHandler) HandleGetForOrder(c *fiber.Ctx) error {
	rating, err := h.service.GetForOrder(c.UserContext(), middleware.UserID(c), c.Params("orderId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Order rating retrieved", fiber.Map{"rating": rating})
}

func (h *OrderRatingHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.OrderRatingInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	rating, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("ratingId"), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Order rating updated", fiber.Map{"rating": rating})
}

func (h *OrderRatingHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("ratingId")); err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Order rating deleted", nil)
}
