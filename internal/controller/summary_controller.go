package controller

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ratehousing_backend/internal/ai"
	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/database"
)

var aiClient *ai.Client

// InitAIControllers wires the LLM client used by the summary and
// smart-match endpoints.
func InitAIControllers(client *ai.Client) {
	aiClient = client
}

// GenerateSummary calls the LLM over the listing's review corpus,
// normalizes whatever comes back, persists it and returns it.
func GenerateSummary(c *fiber.Ctx) error {
	listingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	var listing model.Listing
	if err := database.GetDB().First(&listing, listingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var reviews []model.Review
	if err := database.GetDB().
		Where("listing_id = ?", listingID).
		Preload("Rating").
		Preload("Traits").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	summary, err := aiClient.GenerateSummary(c.Context(), listing, reviews)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate summary: " + err.Error(),
		})
	}

	blob, err := json.Marshal(summary)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	now := time.Now()
	if err := database.GetDB().Model(&listing).Updates(map[string]interface{}{
		"ai_summary":              blob,
		"ai_summary_generated_at": now,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"summary":      summary,
		"generated_at": now,
	})
}

// GetSummary returns the persisted summary, 404 when none was generated.
func GetSummary(c *fiber.Ctx) error {
	listingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	var listing model.Listing
	if err := database.GetDB().First(&listing, listingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if len(listing.AISummary) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No summary generated yet",
		})
	}

	var summary ai.Summary
	if err := json.Unmarshal(listing.AISummary, &summary); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"summary":      summary,
		"generated_at": listing.AISummaryGeneratedAt,
	})
}
