package handlers

import (
	"cleanhub/internal/app"
	adminController "cleanhub/internal/controllers/admin"
	"cleanhub/internal/handlers/middleware"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	controller adminController.AdminControllerInterface
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	return &AdminHandler{
		controller: app.Controllers.Admin,
		Handler:    newHandler(app, router, "admin_handler"),
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group(
		"/admin",
		h.middleware.RequireAuth(),
		h.middleware.RequireAdmin(),
	)

	admin.Post("/users/:id/deposit", h.deposit)
	admin.Get("/jobs", h.getSchedulerStatus)
	admin.Post("/jobs/:name/run", h.runJob)
}

func (h *AdminHandler) deposit(c *fiber.Ctx) error {
	var req adminController.DepositRequest
	if err := decodeStrict(c, &req); err != nil {
		return errorResponse(c, h.log, err)
	}

	entry, err := h.controller.Deposit(c.UserContext(), middleware.GetUser(c), c.Params("id"), &req)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *AdminHandler) getSchedulerStatus(c *fiber.Ctx) error {
	return c.JSON(h.controller.GetSchedulerStatus(c.UserContext()))
}

func (h *AdminHandler) runJob(c *fiber.Ctx) error {
	log := h.log.TraceFromContext(c.UserContext()).Function("runJob")

	jobName := c.Params("name")
	if err := h.controller.RunJob(c.UserContext(), jobName); err != nil {
		return errorResponse(c, h.log, err)
	}

	log.Info("Job run on demand", "job", jobName, "userID", middleware.GetUser(c).ID)
	return c.JSON(fiber.Map{"job": jobName, "status": "completed"})
}
