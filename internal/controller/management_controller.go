package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/database"
)

type ManagementResponseInput struct {
	ManagerName string `json:"manager_name"`
	Text        string `json:"text"`
	Verified    bool   `json:"verified"`
}

// UpsertManagementResponse creates or replaces the single management reply
// a review can carry.
func UpsertManagementResponse(c *fiber.Ctx) error {
	reviewID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review ID",
		})
	}

	input := new(ManagementResponseInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if strings.TrimSpace(input.ManagerName) == "" || strings.TrimSpace(input.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "manager_name and text are required",
		})
	}

	var review model.Review
	if err := database.GetDB().First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Review not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var response model.ManagementResponse
	err = database.GetDB().Where("review_id = ?", reviewID).First(&response).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		response = model.ManagementResponse{
			ReviewID:    uint(reviewID),
			ManagerName: input.ManagerName,
			Text:        input.Text,
			Verified:    input.Verified,
		}
		if err := database.GetDB().Create(&response).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		response.ManagerName = input.ManagerName
		response.Text = input.Text
		response.Verified = input.Verified
		if err := database.GetDB().Save(&response).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return c.JSON(response)
}
