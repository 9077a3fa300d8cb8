package handlers

import (
	"context"

	"cleanhub/internal/app"
	reviewController "cleanhub/internal/controllers/reviews"
	"cleanhub/internal/handlers/middleware"
	"cleanhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	Handler
	controller reviewController.ReviewControllerInterface
}

func NewReviewHandler(app app.App, router fiber.Router) *ReviewHandler {
	return &ReviewHandler{
		controller: app.Controllers.Review,
		Handler:    newHandler(app, router, "review_handler"),
	}
}

func (h *ReviewHandler) Register() {
	reviews := h.router.Group("/reviews", h.middleware.RequireAuth())

	reviews.Post("", h.createReview)
	reviews.Get("/me/received", h.listMyReceived)
	reviews.Get("/me/given", h.listMyGiven)
	reviews.Get("/me/stats", h.refreshMyStats)
	reviews.Get("/users/:id/received", h.listReceived)
	reviews.Get("/users/:id/given", h.listGiven)
	reviews.Get("/:id", h.getReview)
	reviews.Delete("/:id", h.deleteReview)
}

func (h *ReviewHandler) createReview(c *fiber.Ctx) error {
	var req reviewController.CreateReviewRequest
	if err := decodeStrict(c, &req); err != nil {
		return errorResponse(c, h.log, err)
	}

	review, err := h.controller.Create(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) listMyReceived(c *fiber.Ctx) error {
	return h.listReviews(c, h.controller.ListReceived, middleware.GetUser(c).ID.String())
}

func (h *ReviewHandler) listMyGiven(c *fiber.Ctx) error {
	return h.listReviews(c, h.controller.ListGiven, middleware.GetUser(c).ID.String())
}

func (h *ReviewHandler) listReceived(c *fiber.Ctx) error {
	return h.listReviews(c, h.controller.ListReceived, c.Params("id"))
}

func (h *ReviewHandler) listGiven(c *fiber.Ctx) error {
	return h.listReviews(c, h.controller.ListGiven, c.Params("id"))
}

func (h *ReviewHandler) listReviews(
	c *fiber.Ctx,
	list func(ctx context.Context, userID string) ([]models.Review, error),
	userID string,
) error {
	reviews, err := list(c.UserContext(), userID)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"reviews": reviews})
}

func (h *ReviewHandler) refreshMyStats(c *fiber.Ctx) error {
	stats, err := h.controller.RefreshStats(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(stats)
}

func (h *ReviewHandler) getReview(c *fiber.Ctx) error {
	review, err := h.controller.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(review)
}

func (h *ReviewHandler) deleteReview(c *fiber.Ctx) error {
	if err := h.controller.Delete(c.UserContext(), middleware.GetUser(c), c.Params("id")); err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
