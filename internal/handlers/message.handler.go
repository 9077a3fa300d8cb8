package handlers

import (
	"cleanhub/internal/app"
	messageController "cleanhub/internal/controllers/messages"
	"cleanhub/internal/handlers/middleware"

	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	Handler
	controller messageController.MessageControllerInterface
}

func NewMessageHandler(app app.App, router fiber.Router) *MessageHandler {
	return &MessageHandler{
		controller: app.Controllers.Message,
		Handler:    newHandler(app, router, "message_handler"),
	}
}

func (h *MessageHandler) Register() {
	messages := h.router.Group("/messages", h.middleware.RequireAuth())

	messages.Post("", h.sendMessage)
	messages.Get("/service/:serviceId", h.listServiceMessages)
	messages.Delete("/:id", h.deleteMessage)
}

func (h *MessageHandler) sendMessage(c *fiber.Ctx) error {
	var req messageController.SendMessageRequest
	if err := decodeStrict(c, &req); err != nil {
		return errorResponse(c, h.log, err)
	}

	message, err := h.controller.Send(c.UserContext(), middleware.GetUser(c), &req)
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

func (h *MessageHandler) listServiceMessages(c *fiber.Ctx) error {
	messages, err := h.controller.ListForService(c.UserContext(), middleware.GetUser(c), c.Params("serviceId"))
	if err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.JSON(fiber.Map{"messages": messages})
}

func (h *MessageHandler) deleteMessage(c *fiber.Ctx) error {
	if err := h.controller.Delete(c.UserContext(), middleware.GetUser(c), c.Params("id")); err != nil {
		return errorResponse(c, h.log, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
