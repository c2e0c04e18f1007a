package controller

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"ratehousing_backend/pkg/utils/geocode"
)

// Geocode proxies address search to the geocoding service so the browser
// never talks to it directly.
func Geocode(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter q is required",
		})
	}

	results, err := geocode.Search(c.Context(), query, os.Getenv("GEOCODE_CITY_BIAS"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(results)
}
