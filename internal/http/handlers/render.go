package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopcarts/internal/domain"
	applog "shopcarts/internal/log"
)

// fail maps the core error taxonomy onto HTTP statuses: ValidationError is a
// 400, NotFoundError a 404, anything else a 500 with no internal leakage.
func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case domain.IsValidation(err):
		applog.Warn(c, action, map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case domain.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

// itemWithoutTimestamps strips created_at/last_updated for the items listing.
func itemWithoutTimestamps(it domain.Item) fiber.Map {
	return fiber.Map{
		"user_id":     it.UserID,
		"item_id":     it.ItemID,
		"description": it.Description,
		"quantity":    it.Quantity,
		"price":       it.Price,
	}
}
