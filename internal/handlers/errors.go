package handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"cleanhub/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

// errorResponse is the single place where domain errors become HTTP statuses.
func errorResponse(c *fiber.Ctx, log logger.Logger, err error) error {
	var insufficient *types.InsufficientFundsError

	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":    "insufficient funds",
			"required": insufficient.Required.StringFixed(2),
			"current":  insufficient.Current.StringFixed(2),
		})
	case errors.Is(err, types.ErrInsufficientFunds),
		errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrInvalidReference):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, types.ErrAuthorization):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, types.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, types.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	log.TraceFromContext(c.UserContext()).Er("request failed", err, "path", c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

// decodeStrict parses exactly one JSON object and rejects unknown fields.
func decodeStrict(c *fiber.Ctx, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return types.Validationf("invalid request body: %v", err)
	}
	if decoder.More() {
		return types.Validationf("request body must hold a single JSON object")
	}
	return nil
}
