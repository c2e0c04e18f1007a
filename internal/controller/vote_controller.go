package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ratehousing_backend/internal/aggregate"
	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/database"
)

type VoteInput struct {
	VoteType       model.VoteType `json:"vote_type"`
	UserIdentifier string         `json:"user_identifier"`
}

// VoteOnReview upserts a helpful/not-helpful vote keyed by
// (review, user_identifier). Re-voting with the same type is a no-op,
// a different type updates the existing record.
func VoteOnReview(c *fiber.Ctx) error {
	reviewID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review ID",
		})
	}

	input := new(VoteInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if input.UserIdentifier == "" ||
		(input.VoteType != model.VoteHelpful && input.VoteType != model.VoteNotHelpful) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_identifier and a valid vote_type are required",
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

	var vote model.ReviewVote
	err = database.GetDB().
		Where("review_id = ? AND user_identifier = ?", reviewID, input.UserIdentifier).
		First(&vote).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		vote = model.ReviewVote{
			ReviewID:       uint(reviewID),
			UserIdentifier: input.UserIdentifier,
			VoteType:       input.VoteType,
		}
		if err := database.GetDB().Create(&vote).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	case vote.VoteType != input.VoteType:
		if err := database.GetDB().Model(&vote).
			Update("vote_type", input.VoteType).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return respondWithCounts(c, uint(reviewID))
}

// RemoveVote deletes the caller's vote from a review.
func RemoveVote(c *fiber.Ctx) error {
	reviewID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review ID",
		})
	}

	input := new(VoteInput)
	if err := c.BodyParser(input); err != nil || input.UserIdentifier == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_identifier is required",
		})
	}

	if err := database.GetDB().Unscoped().
		Where("review_id = ? AND user_identifier = ?", reviewID, input.UserIdentifier).
		Delete(&model.ReviewVote{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return respondWithCounts(c, uint(reviewID))
}

func respondWithCounts(c *fiber.Ctx, reviewID uint) error {
	if err := aggregate.RecomputeVoteCounts(database.GetDB(), reviewID); err != nil {
		// The vote itself succeeded; the counters stay stale until the
		// next recompute trigger.
		log.Printf("Could not recompute vote counts for review %d: %v", reviewID, err)
	}

	var review model.Review
	if err := database.GetDB().First(&review, reviewID).Error; err != nil {
		return c.JSON(fiber.Map{"success": true})
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"helpful_count":     review.HelpfulCount,
		"not_helpful_count": review.NotHelpfulCount,
	})
}
