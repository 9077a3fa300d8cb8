package handlers

import (
	"cleanhub/internal/app"
	userController "cleanhub/internal/controllers/users"
	"cleanhub/internal/handlers/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	controller userController.UserControllerInterface
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	return &UserHandler{
		controller: app.Controllers.User,
		Handler:    newHandler(app, router, "user_handler"),
	}
}

func (h *UserHandler) Register() {
	me := h.router.Group("/users/me", h.middleware.RequireAuth())

	me.Get("", h.getCurrentUser)
	me.Get("/ledger", h.getLedger)
	me.Get("/notifications", h.getNotifications)
	me.Put("/notifications/read", h.markNotificationsRead)
}

func (h *UserHandler) getCurrentUser(c *fiber.Ctx) error {
	profile, err := h.controller.GetProfile(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"user": profile})
}

func (h *UserHandler) getLedger(c *fiber.Ctx) error {
	entries, err := h.controller.GetLedger(c.UserContext(), middleware.GetUser(c), c.QueryInt("limit"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"entries": entries})
}

func (h *UserHandler) getNotifications(c *fiber.Ctx) error {
	notifications, err := h.controller.GetNotifications(
		c.UserContext(),
		middleware.GetUser(c),
		c.QueryBool("unread"),
		c.QueryInt("limit"),
	)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *UserHandler) markNotificationsRead(c *fiber.Ctx) error {
	var req userController.MarkReadRequest
	if len(c.Body()) > 0 {
		if err := decodeStrict(c, &req); err != nil {
			return errorResponse(c, h.log, err)
		}
	}

	response, err := h.controller.MarkNotificationsRead(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(response)
}
