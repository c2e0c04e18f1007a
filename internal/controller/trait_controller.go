// internal/controller/trait_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"ratehousing_backend/internal/model"
)

// GetTraits returns the canonical trait vocabulary grouped by category.
func GetTraits(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"categories": model.TraitCategories,
	})
}
