package handlers

import (
	"tokoorder/internal/middleware"
	"tokoorder/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orders *services.OrderService
	status *services.StatusService
	log    *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, status *services.StatusService, log *zap.Logger) *OrderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHandler{orders: orders, status: status, log: log.Named("order_handler")}
}

// RegisterRoutes registers the order routes. auth authenticates the caller;
// seller additionally requires the seller role.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth, seller fiber.Handler) {
	orderRoutes := router.Group("/order")
	orderRoutes.Post("/cod", auth, h.HandlePlaceCOD)
	orderRoutes.Post("/online", auth, h.HandlePlaceOnline)
	orderRoutes.Post("/guest", h.HandlePlaceGuest)
	orderRoutes.Get("/user", auth, h.HandleListForUser)
	orderRoutes.Get("/seller", auth, seller, h.HandleListForSeller)
	orderRoutes.Put("/status", auth, seller, h.HandleUpdateStatus)
	orderRoutes.Put("/payment", auth, seller, h.HandleUpdatePayment)
	orderRoutes.Get("/:orderId", auth, h.HandleGetOrder)
	orderRoutes.Delete("/:orderId", auth, seller, h.HandleDeleteOrder)
}

// HandlePlaceCOD places a cash-on-delivery order.
func (h *OrderHandler) HandlePlaceCOD(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	order, err := h.orders.PlaceCashOnDelivery(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusCreated, "Order placed", fiber.Map{"order": order})
}

// HandlePlaceOnline places an online order and returns the checkout redirect.
func (h *OrderHandler) HandlePlaceOnline(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.orders.PlaceOnline(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusCreated, "Order placed, continue to payment", fiber.Map{
		"order":       result.Order,
		"redirectUrl": result.RedirectURL,
		"sessionId":   result.SessionID,
	})
}

// HandlePlaceGuest places a cash-on-delivery order without an account.
func (h *OrderHandler) HandlePlaceGuest(c *fiber.Ctx) error {
	var req services.GuestOrderRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	order, err := h.orders.PlaceGuest(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusCreated, "Order placed", fiber.Map{"order": order})
}

func (h *OrderHandler) HandleListForUser(c *fiber.Ctx) error {
	orders, err := h.orders.ListForBuyer(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Orders retrieved", fiber.Map{"orders": orders})
}

func (h *OrderHandler) HandleListForSeller(c *fiber.Ctx) error {
	orders, err := h.orders.ListForSeller(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Orders retrieved", fiber.Map{"orders": orders})
}

func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetForBuyer(c.UserContext(), c.Params("orderId"), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Order retrieved", fiber.Map{"order": order})
}

// HandleUpdateStatus overwrites an order's status.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req services.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	order, err := h.status.UpdateStatus(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Status updated", fiber.Map{"order": order})
}

// HandleUpdatePayment overwrites an order's payment flag.
func (h *OrderHandler) HandleUpdatePayment(c *fiber.Ctx) error {
	var req services.UpdatePaymentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	order, err := h.status.SetPaymentStatus(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Payment status updated", fiber.Map{"order": order})
}

func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.orders.DeleteForSeller(c.UserContext(), c.Params("orderId"), middleware.UserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Order deleted", nil)
}
