package handlers

import (
	"tokoorder/internal/middleware"
	"tokoorder/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RatingHandler handles product ratings.
type RatingHandler struct {
	service *services.RatingService
	log     *zap.Logger
}

func NewRatingHandler(service *services.RatingService, log *zap.Logger) *RatingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RatingHandler{service: service, log: log.Named("rating_handler")}
}

func (h *RatingHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	ratingRoutes := router.Group("/rating")
	ratingRoutes.Post("/create", auth, h.HandleCreate)
	ratingRoutes.Get("/can-rate/:productId", auth, h.HandleCanRate)
	ratingRoutes.Get("/product/:productId", h.HandleListForProduct)
	ratingRoutes.Put("/:ratingId", auth, h.HandleUpdate)
	ratingRoutes.Delete("/:ratingId", auth, h.HandleDelete)
}

func (h *RatingHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.CreateRatingRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	rating, err := h.service.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusCreated, "Rating submitted", fiber.Map{"rating": rating})
}

// HandleCanRate answers ?orderId= scoped or across all of the caller's orders.
func (h *RatingHandler) HandleCanRate(c *fiber.Ctx) error {
	result, err := h.service.CanRate(c.UserContext(), middleware.UserID(c), c.Params("productId"), c.Query("orderId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, eligibilityMessage(result), fiber.Map{
		"canRate": result.CanRate,
		"reason":  result.Reason,
		"orderId": result.OrderID,
	})
}

func (h *RatingHandler) HandleListForProduct(c *fiber.Ctx) error {
	result, err := h.service.ListForProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Ratings retrieved", fiber.Map{
		"ratings":       result.Ratings,
		"averageRating": result.Summary.AverageRating,
		"totalCount":    result.Summary.TotalCount,
	})
}

func (h *RatingHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.UpdateRatingRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	rating, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("ratingId"), req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Rating updated", fiber.Map{"rating": rating})
}

func (h *RatingHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("ratingId")); err != nil {
		return respondError(c, h.log, err)
	}
	return respond(c, fiber.StatusOK, "Rating deleted", nil)
}

func eligibilityMessage(e services.Eligibility) string {
	if e.CanRate {
		return "Eligible to rate"
	}
	return "Not eligible to rate: " + e.Reason
}
