package controller

import (
	"encoding/json"
	"log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ratehousing_backend/internal/aggregate"
	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/database"
	"ratehousing_backend/pkg/utils/storage"
)

const MaxReviewImages = 10

var uploadStorage storage.Storage

// InitReviewController wires the upload storage backend.
func InitReviewController(s storage.Storage) {
	uploadStorage = s
}

type ReviewResponse struct {
	ID                 uint                      `json:"id"`
	ListingID          uint                      `json:"listing_id"`
	UserID             uint                      `json:"user_id"`
	UserName           string                    `json:"user_name"`
	Text               string                    `json:"text"`
	Rating             int                       `json:"rating"`
	Bedrooms           *int                      `json:"bedrooms"`
	Bathrooms          *float64                  `json:"bathrooms"`
	RentPrice          *float64                  `json:"rent_price"`
	HelpfulCount       int64                     `json:"helpful_count"`
	NotHelpfulCount    int64                     `json:"not_helpful_count"`
	CreatedAt          time.Time                 `json:"created_at"`
	Images             []ReviewImageResponse     `json:"images"`
	Traits             []string                  `json:"traits"`
	ManagementResponse *model.ManagementResponse `json:"management_response,omitempty"`
	UserVote           *model.VoteType           `json:"user_vote,omitempty"`
}

type ReviewImageResponse struct {
	URL string `json:"url"`
}

// GetListingReviews returns a listing's reviews, newest first, with nested
// rating, images, traits and management response. When user_identifier is
// supplied, that user's vote rides along.
func GetListingReviews(c *fiber.Ctx) error {
	listingID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	var reviews []model.Review
	if err := database.GetDB().
		Where("listing_id = ?", listingID).
		Preload("Rating").
		Preload("Images").
		Preload("Traits").
		Preload("ManagementResponse").
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	votesByReview := map[uint]model.VoteType{}
	if identifier := c.Query("user_identifier"); identifier != "" {
		var votes []model.ReviewVote
		reviewIDs := make([]uint, 0, len(reviews))
		for _, r := range reviews {
			reviewIDs = append(reviewIDs, r.ID)
		}
		if len(reviewIDs) > 0 {
			database.GetDB().
				Where("review_id IN ? AND user_identifier = ?", reviewIDs, identifier).
				Find(&votes)
		}
		for _, v := range votes {
			votesByReview[v.ReviewID] = v.VoteType
		}
	}

	response := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		item := ReviewResponse{
			ID:                 review.ID,
			ListingID:          review.ListingID,
			UserID:             review.UserID,
			UserName:           review.User.Name,
			Text:               review.Text,
			Rating:             review.Rating.Rating,
			Bedrooms:           review.Bedrooms,
			Bathrooms:          review.Bathrooms,
			RentPrice:          review.RentPrice,
			HelpfulCount:       review.HelpfulCount,
			NotHelpfulCount:    review.NotHelpfulCount,
			CreatedAt:          review.CreatedAt,
			Images:             make([]ReviewImageResponse, 0, len(review.Images)),
			Traits:             make([]string, 0, len(review.Traits)),
			ManagementResponse: review.ManagementResponse,
		}
		for _, img := range review.Images {
			item.Images = append(item.Images, ReviewImageResponse{URL: img.URL})
		}
		for _, trait := range review.Traits {
			item.Traits = append(item.Traits, trait.Label)
		}
		if vote, ok := votesByReview[review.ID]; ok {
			v := vote
			item.UserVote = &v
		}
		response = append(response, item)
	}

	return c.JSON(response)
}

// CreateReview creates user (implicitly), review, rating, images and traits
// in one transaction. A failure at any step rolls back the whole submission.
func CreateReview(c *fiber.Ctx) error {
	listingID, err := strconv.ParseUint(c.FormValue("listing_id"), 10, 32)
	userName := strings.TrimSpace(c.FormValue("user_name"))
	ratingValue, ratingErr := strconv.Atoi(c.FormValue("rating"))
	text := strings.TrimSpace(c.FormValue("text"))

	if err != nil || userName == "" || ratingErr != nil || text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}
	if len(files) > MaxReviewImages {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Maximum 10 images allowed",
		})
	}

	// Uploads land in storage before the transaction; rows reference the
	// returned URLs. On rollback the stored files are removed again.
	imageURLs := make([]string, 0, len(files))
	cleanupUploads := func() {
		for _, url := range imageURLs {
			if err := uploadStorage.Delete(url); err != nil {
				log.Printf("Could not remove orphaned upload %s: %v", url, err)
			}
		}
	}
	for _, file := range files {
		url, err := uploadStorage.Save(file)
		if err != nil {
			cleanupUploads()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		imageURLs = append(imageURLs, url)
	}

	traits := parseTraits(c.FormValue("traits"))

	tx := database.GetDB().Begin()

	var user model.User
	if err := tx.Where("name = ?", userName).
		FirstOrCreate(&user, model.User{Name: userName}).Error; err != nil {
		tx.Rollback()
		cleanupUploads()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	review := model.Review{
		ListingID: uint(listingID),
		UserID:    user.ID,
		Text:      text,
		Bedrooms:  intForm(c, "bedrooms"),
		Bathrooms: floatForm(c, "bathrooms"),
		RentPrice: floatForm(c, "rent_price"),
	}
	if err := tx.Create(&review).Error; err != nil {
		tx.Rollback()
		cleanupUploads()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The CHECK constraint rejects out-of-range ratings here; the value is
	// surfaced as a storage error, never clamped.
	rating := model.Rating{ReviewID: review.ID, Rating: ratingValue}
	if err := tx.Create(&rating).Error; err != nil {
		tx.Rollback()
		cleanupUploads()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	for _, url := range imageURLs {
		if err := tx.Create(&model.ReviewImage{ReviewID: review.ID, URL: url}).Error; err != nil {
			tx.Rollback()
			cleanupUploads()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error saving images",
			})
		}
	}

	for _, label := range traits {
		if err := tx.Create(&model.ReviewTrait{ReviewID: review.ID, Label: label}).Error; err != nil {
			tx.Rollback()
			cleanupUploads()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error saving traits",
			})
		}
	}

	if err := tx.Commit().Error; err != nil {
		cleanupUploads()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Recompute is deliberately outside the transaction; a failure leaves
	// the average stale until the next trigger, not the review unwritten.
	if err := aggregate.RecomputeAverageRating(database.GetDB(), uint(listingID)); err != nil {
		log.Printf("Could not recompute average for listing %d: %v", listingID, err)
	}

	return c.JSON(fiber.Map{"success": true, "review_id": review.ID})
}

// DeleteReview removes a review, its rating, votes, traits and images
// (rows and files), then recomputes the listing average.
func DeleteReview(c *fiber.Ctx) error {
	reviewID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review ID",
		})
	}

	var review model.Review
	if err := database.GetDB().Preload("Images").First(&review, reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Review not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	tx := database.GetDB().Begin()
	for _, child := range []interface{}{
		&model.Rating{}, &model.ReviewImage{}, &model.ReviewTrait{},
		&model.ReviewVote{}, &model.ManagementResponse{},
	} {
		if err := tx.Unscoped().Where("review_id = ?", review.ID).Delete(child).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}
	if err := tx.Unscoped().Delete(&review).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	for _, img := range review.Images {
		if err := uploadStorage.Delete(img.URL); err != nil {
			log.Printf("Could not delete image file %s: %v", img.URL, err)
		}
	}

	if err := aggregate.RecomputeAverageRating(database.GetDB(), review.ListingID); err != nil {
		log.Printf("Could not recompute average for listing %d: %v", review.ListingID, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// parseTraits accepts the JSON array the review form submits, falling back
// to a comma-separated list.
func parseTraits(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				labels = append(labels, part)
			}
		}
	}

	cleaned := labels[:0]
	for _, label := range labels {
		if label = strings.TrimSpace(label); label != "" {
			cleaned = append(cleaned, label)
		}
	}
	return cleaned
}

func intForm(c *fiber.Ctx, name string) *int {
	raw := c.FormValue(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}

func floatForm(c *fiber.Ctx, name string) *float64 {
	raw := c.FormValue(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
