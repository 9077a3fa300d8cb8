package handlers

import (
	"cleanhub/internal/app"
	propertyController "cleanhub/internal/controllers/properties"
	"cleanhub/internal/handlers/middleware"

	"github.com/gofiber/fiber/v2"
)

type PropertyHandler struct {
	Handler
	controller propertyController.PropertyControllerInterface
}

func NewPropertyHandler(app app.App, router fiber.Router) *PropertyHandler {
	return &PropertyHandler{
		controller: app.Controllers.Property,
		Handler:    newHandler(app, router, "property_handler"),
	}
}

func (h *PropertyHandler) Register() {
	properties := h.router.Group("/properties", h.middleware.RequireAuth())

	properties.Post("", h.createProperty)
	properties.Get("", h.listProperties)
}

func (h *PropertyHandler) createProperty(c *fiber.Ctx) error {
	var req propertyController.CreatePropertyRequest
	if err := decodeStrict(c, &req); err != nil {
		return errorResponse(c, h.log, err)
	}

	property, err := h.controller.Create(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(property)
}

func (h *PropertyHandler) listProperties(c *fiber.Ctx) error {
	properties, err := h.controller.List(c.UserContext(), middleware.GetUser(c))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"properties": properties})
}
