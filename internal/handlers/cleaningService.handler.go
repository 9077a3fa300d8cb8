package handlers

import (
	"cleanhub/internal/app"
	cleaningServiceController "cleanhub/internal/controllers/cleaningServices"
	"cleanhub/internal/handlers/middleware"

	"github.com/gofiber/fiber/v2"
)

type CleaningServiceHandler struct {
	Handler
	controller cleaningServiceController.CleaningServiceControllerInterface
}

func NewCleaningServiceHandler(app app.App, router fiber.Router) *CleaningServiceHandler {
	return &CleaningServiceHandler{
		controller: app.Controllers.CleaningService,
		Handler:    newHandler(app, router, "cleaningService_handler"),
	}
}

func (h *CleaningServiceHandler) Register() {
	services := h.router.Group("/cleaningService", h.middleware.RequireAuth())

	services.Post("", h.createService)
	services.Get("", h.listServices)
	services.Get("/pending", h.listPending)
	services.Get("/assigned", h.listAssigned)
	services.Get("/streak", h.getStreak)
	services.Get("/:id", h.getService)
	services.Put("/:id", h.updateService)
	services.Delete("/:id", h.deleteService)
	services.Post("/:id/book-again", h.bookAgain)
	services.Put("/:id/accept-rebooking", h.respondToRebooking)
}

func (h *CleaningServiceHandler) createService(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	var req cleaningServiceController.CreateServiceRequest
	if err := decodeStrict(c, &req); err != nil {
		return errorResponse(c, h.log, err)
	}

	service, err := h.controller.Create(c.UserContext(), user, &req)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(service)
}

func (h *CleaningServiceHandler) listServices(c *fiber.Ctx) error {
	services, err := h.controller.List(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"services": services})
}

func (h *CleaningServiceHandler) listPending(c *fiber.Ctx) error {
	services, err := h.controller.ListPending(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"services": services})
}

func (h *CleaningServiceHandler) listAssigned(c *fiber.Ctx) error {
	services, err := h.controller.ListAssigned(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"services": services})
}

func (h *CleaningServiceHandler) getStreak(c *fiber.Ctx) error {
	streak, err := h.controller.GetStreak(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(streak)
}

func (h *CleaningServiceHandler) getService(c *fiber.Ctx) error {
	service, err := h.controller.Get(c.UserContext(), middleware.GetUser(c), c.Params("id"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(service)
}

func (h *CleaningServiceHandler) updateService(c *fiber.Ctx) error {
	var req cleaningServiceController.UpdateServiceRequest
	if err := decodeStrict(c, &req); err != nil {
		return errorResponse(c, h.log, err)
	}

	service, err := h.controller.Update(c.UserContext(), middleware.GetUser(c), c.Params("id"), &req)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(service)
}

func (h *CleaningServiceHandler) deleteService(c *fiber.Ctx) error {
	if err := h.controller.Delete(c.UserContext(), middleware.GetUser(c), c.Params("id")); err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CleaningServiceHandler) bookAgain(c *fiber.Ctx) error {
	var req cleaningServiceController.BookAgainRequest
	if err := decodeStrict(c, &req); err != nil {
		return errorResponse(c, h.log, err)
	}

	service, err := h.controller.BookAgain(c.UserContext(), middleware.GetUser(c), c.Params("id"), &req)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(service)
}

func (h *CleaningServiceHandler) respondToRebooking(c *fiber.Ctx) error {
	var req cleaningServiceController.RebookingResponseRequest
	if err := decodeStrict(c, &req); err != nil {
		return errorResponse(c, h.log, err)
	}

	service, err := h.controller.RespondToRebooking(
		c.UserContext(),
		middleware.GetUser(c),
		c.Params("id"),
		&req,
	)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(service)
}
