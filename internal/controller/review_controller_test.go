package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/database"
	"ratehousing_backend/pkg/utils/storage"
)

func setupTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Listing{},
		&model.Review{},
		&model.Rating{},
		&model.ReviewImage{},
		&model.ReviewTrait{},
		&model.ReviewVote{},
		&model.ManagementResponse{},
	))
	database.DB = db

	uploadsDir := t.TempDir()
	store, err := storage.NewLocalStorage(uploadsDir)
	require.NoError(t, err)
	InitReviewController(store)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/listings", ListListings)
	api.Post("/listings", CreateListing)
	api.Get("/listings/:id", GetListing)
	api.Get("/reviews/listing/:id", GetListingReviews)
	api.Post("/reviews", CreateReview)
	api.Delete("/reviews/:id", DeleteReview)
	api.Post("/reviews/:id/vote", VoteOnReview)
	api.Delete("/reviews/:id/vote", RemoveVote)
	api.Post("/reviews/:id/management-response", UpsertManagementResponse)
	api.Post("/listings/:id/generate-summary", GenerateSummary)
	api.Get("/listings/:id/summary", GetSummary)
	api.Post("/smart-match", SmartMatch)

	return app, uploadsDir
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(t *testing.T, target string, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func seedListing(t *testing.T, name string) model.Listing {
	t.Helper()
	listing := model.Listing{Name: name, Address: "1 " + name + " Way"}
	require.NoError(t, database.GetDB().Create(&listing).Error)
	return listing
}

func postReview(t *testing.T, app *fiber.App, fields map[string]string) uint {
	t.Helper()
	resp, err := app.Test(formRequest(t, "/api/reviews", fields), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Success  bool `json:"success"`
		ReviewID uint `json:"review_id"`
	}
	decodeBody(t, resp, &result)
	require.True(t, result.Success)
	return result.ReviewID
}

func TestCreateReviewRoundTrip(t *testing.T) {
	app, _ := setupTestApp(t)
	listing := seedListing(t, "Maple Court")

	postReview(t, app, map[string]string{
		"listing_id": "1",
		"user_name":  "Alice",
		"rating":     "4",
		"text":       "Lovely place, quiet street.",
		"bedrooms":   "2",
		"bathrooms":  "1.5",
		"rent_price": "1350",
		"traits":     `["Quiet", "Pet-friendly"]`,
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/reviews/listing/1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reviews []ReviewResponse
	decodeBody(t, resp, &reviews)
	require.Len(t, reviews, 1)

	got := reviews[0]
	assert.Equal(t, "Alice", got.UserName)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "Lovely place, quiet street.", got.Text)
	require.NotNil(t, got.Bedrooms)
	assert.Equal(t, 2, *got.Bedrooms)
	require.NotNil(t, got.Bathrooms)
	assert.Equal(t, 1.5, *got.Bathrooms)
	require.NotNil(t, got.RentPrice)
	assert.Equal(t, 1350.0, *got.RentPrice)
	assert.ElementsMatch(t, []string{"Quiet", "Pet-friendly"}, got.Traits)
	assert.Empty(t, got.Images)
	assert.Nil(t, got.ManagementResponse)

	// Average recomputed after the commit.
	var updated model.Listing
	require.NoError(t, database.GetDB().First(&updated, listing.ID).Error)
	assert.InDelta(t, 4.0, updated.AverageRating, 0.001)
}

func TestCreateReviewMissingFields(t *testing.T) {
	app, _ := setupTestApp(t)
	seedListing(t, "Maple Court")

	resp, err := app.Test(formRequest(t, "/api/reviews", map[string]string{
		"listing_id": "1",
		"user_name":  "Alice",
		"rating":     "4",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	database.GetDB().Model(&model.Review{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateReviewRatingOutOfRangeRollsBack(t *testing.T) {
	app, _ := setupTestApp(t)
	seedListing(t, "Maple Court")

	resp, err := app.Test(formRequest(t, "/api/reviews", map[string]string{
		"listing_id": "1",
		"user_name":  "Bob",
		"rating":     "6",
		"text":       "Too good to be true.",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// The whole submission rolled back, the implicitly created user included.
	var reviews, users int64
	database.GetDB().Model(&model.Review{}).Count(&reviews)
	database.GetDB().Model(&model.User{}).Count(&users)
	assert.Zero(t, reviews)
	assert.Zero(t, users)
}

func TestCreateReviewReusesExistingUser(t *testing.T) {
	app, _ := setupTestApp(t)
	seedListing(t, "Maple Court")
	seedListing(t, "Oak Villas")

	postReview(t, app, map[string]string{
		"listing_id": "1", "user_name": "Alice", "rating": "4", "text": "First review.",
	})
	postReview(t, app, map[string]string{
		"listing_id": "2", "user_name": "Alice", "rating": "2", "text": "Second review.",
	})

	var users int64
	database.GetDB().Model(&model.User{}).Count(&users)
	assert.Equal(t, int64(1), users)
}

func TestVoteUpsertAndRemove(t *testing.T) {
	app, _ := setupTestApp(t)
	seedListing(t, "Maple Court")
	reviewID := postReview(t, app, map[string]string{
		"listing_id": "1", "user_name": "Alice", "rating": "4", "text": "Nice.",
	})

	vote := func(voteType string) *http.Response {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/reviews/1/vote", fiber.Map{
			"vote_type":       voteType,
			"user_identifier": "device-123",
		}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		return resp
	}

	// Voting helpful twice leaves exactly one vote record.
	vote("helpful")
	resp := vote("helpful")

	var counts struct {
		HelpfulCount    int64 `json:"helpful_count"`
		NotHelpfulCount int64 `json:"not_helpful_count"`
	}
	decodeBody(t, resp, &counts)
	assert.Equal(t, int64(1), counts.HelpfulCount)

	var voteRows int64
	database.GetDB().Model(&model.ReviewVote{}).Where("review_id = ?", reviewID).Count(&voteRows)
	assert.Equal(t, int64(1), voteRows)

	// Switching the type updates the same record.
	resp = vote("not_helpful")
	decodeBody(t, resp, &counts)
	assert.Equal(t, int64(0), counts.HelpfulCount)
	assert.Equal(t, int64(1), counts.NotHelpfulCount)

	database.GetDB().Model(&model.ReviewVote{}).Where("review_id = ?", reviewID).Count(&voteRows)
	assert.Equal(t, int64(1), voteRows)

	// Removing drops the record and the counter.
	resp, err := app.Test(jsonRequest(http.MethodDelete, "/api/reviews/1/vote", fiber.Map{
		"user_identifier": "device-123",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &counts)
	assert.Zero(t, counts.NotHelpfulCount)

	database.GetDB().Model(&model.ReviewVote{}).Where("review_id = ?", reviewID).Count(&voteRows)
	assert.Zero(t, voteRows)
}

func TestVoteValidation(t *testing.T) {
	app, _ := setupTestApp(t)
	seedListing(t, "Maple Court")
	postReview(t, app, map[string]string{
		"listing_id": "1", "user_name": "Alice", "rating": "4", "text": "Nice.",
	})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/reviews/1/vote", fiber.Map{
		"vote_type":       "love_it",
		"user_identifier": "device-123",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/reviews/999/vote", fiber.Map{
		"vote_type":       "helpful",
		"user_identifier": "device-123",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetListingReviewsIncludesCallerVote(t *testing.T) {
	app, _ := setupTestApp(t)
	seedListing(t, "Maple Court")
	postReview(t, app, map[string]string{
		"listing_id": "1", "user_name": "Alice", "rating": "4", "text": "Nice.",
	})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/reviews/1/vote", fiber.Map{
		"vote_type":       "helpful",
		"user_identifier": "device-123",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet,
		"/api/reviews/listing/1?user_identifier=device-123", nil), -1)
	require.NoError(t, err)

	var reviews []ReviewResponse
	decodeBody(t, resp, &reviews)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].UserVote)
	assert.Equal(t, model.VoteHelpful, *reviews[0].UserVote)

	// Without the identifier no vote is attached.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/reviews/listing/1", nil), -1)
	require.NoError(t, err)
	reviews = nil
	decodeBody(t, resp, &reviews)
	require.Len(t, reviews, 1)
	assert.Nil(t, reviews[0].UserVote)
}

func TestDeleteReviewCascades(t *testing.T) {
	app, uploadsDir := setupTestApp(t)
	listing := seedListing(t, "Maple Court")
	reviewID := postReview(t, app, map[string]string{
		"listing_id": "1", "user_name": "Alice", "rating": "5",
		"text": "Great.", "traits": "Quiet",
	})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/reviews/1/vote", fiber.Map{
		"vote_type": "helpful", "user_identifier": "device-123",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/reviews/1/management-response", fiber.Map{
		"manager_name": "PM Office", "text": "Thanks for the kind words.",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// An image row pointing at a real file on disk.
	imagePath := filepath.Join(uploadsDir, "photo.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("jpeg bytes"), 0o644))
	require.NoError(t, database.GetDB().Create(&model.ReviewImage{
		ReviewID: reviewID,
		URL:      "/uploads/photo.jpg",
	}).Error)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/reviews/1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, child := range []interface{}{
		&model.Review{}, &model.Rating{}, &model.ReviewImage{},
		&model.ReviewTrait{}, &model.ReviewVote{}, &model.ManagementResponse{},
	} {
		var count int64
		database.GetDB().Model(child).Count(&count)
		assert.Zero(t, count, "%T rows must be gone", child)
	}

	_, err = os.Stat(imagePath)
	assert.True(t, os.IsNotExist(err), "image file must be removed")

	var updated model.Listing
	require.NoError(t, database.GetDB().First(&updated, listing.ID).Error)
	assert.Zero(t, updated.AverageRating)
}

func TestDeleteReviewNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/reviews/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpsertManagementResponseReplacesExisting(t *testing.T) {
	app, _ := setupTestApp(t)
	seedListing(t, "Maple Court")
	reviewID := postReview(t, app, map[string]string{
		"listing_id": "1", "user_name": "Alice", "rating": "2", "text": "Noisy.",
	})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/reviews/1/management-response", fiber.Map{
		"manager_name": "PM Office", "text": "We are sorry to hear that.",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/reviews/1/management-response", fiber.Map{
		"manager_name": "PM Office", "text": "The issue has been fixed.", "verified": true,
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var responses []model.ManagementResponse
	require.NoError(t, database.GetDB().Where("review_id = ?", reviewID).Find(&responses).Error)
	require.Len(t, responses, 1)
	assert.Equal(t, "The issue has been fixed.", responses[0].Text)
	assert.True(t, responses[0].Verified)
}

func TestParseTraits(t *testing.T) {
	assert.Nil(t, parseTraits(""))
	assert.Equal(t, []string{"Quiet", "Pet-friendly"}, parseTraits(`["Quiet", "Pet-friendly"]`))
	assert.Equal(t, []string{"Quiet", "Pet-friendly"}, parseTraits("Quiet, Pet-friendly"))
	assert.Equal(t, []string{"Quiet"}, parseTraits(`["Quiet", "  "]`))
}
