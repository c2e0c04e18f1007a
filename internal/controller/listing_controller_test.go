package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratehousing_backend/internal/aggregate"
	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/database"
)

func TestCreateListingValidation(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/listings", fiber.Map{
		"name": "Maple Court",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/listings", fiber.Map{
		"name":    "Maple Court",
		"address": "1 Maple Way",
	}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created model.Listing
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "maple-court", created.Slug)
}

func TestCreateListingDuplicateNamesGetDistinctSlugs(t *testing.T) {
	app, _ := setupTestApp(t)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/listings", fiber.Map{
			"name":    "Maple Court",
			"address": "1 Maple Way",
		}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	var listings []model.Listing
	require.NoError(t, database.GetDB().Find(&listings).Error)
	require.Len(t, listings, 2)
	assert.NotEqual(t, listings[0].Slug, listings[1].Slug)
}

func TestGetListingNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/listings/999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListListingsFiltersAndSorts(t *testing.T) {
	app, _ := setupTestApp(t)
	seedListing(t, "Maple Court")
	seedListing(t, "Oak Villas")
	seedListing(t, "Cedar Flats")

	// Maple Court: a two-bedroom review with parking.
	postReview(t, app, map[string]string{
		"listing_id": "1", "user_name": "Alice", "rating": "5",
		"text": "Great spot.", "bedrooms": "2", "rent_price": "1400",
		"traits": `["Parking included"]`,
	})
	// Oak Villas: two bedrooms but no parking trait.
	postReview(t, app, map[string]string{
		"listing_id": "2", "user_name": "Bob", "rating": "3",
		"text": "Decent.", "bedrooms": "2", "rent_price": "1100",
	})
	// Cedar Flats: parking but only one bedroom.
	postReview(t, app, map[string]string{
		"listing_id": "3", "user_name": "Cara", "rating": "4",
		"text": "Cosy.", "bedrooms": "1", "rent_price": "900",
		"traits": `["Parking included"]`,
	})

	get := func(target string) []aggregate.ListingWithAggregates {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var listings []aggregate.ListingWithAggregates
		decodeBody(t, resp, &listings)
		return listings
	}

	// Only Maple Court has a single review with both two bedrooms and parking.
	listings := get("/api/listings?minBedrooms=2&traits=Parking")
	require.Len(t, listings, 1)
	assert.Equal(t, "Maple Court", listings[0].Name)

	listings = get("/api/listings?minRating=3.5")
	require.Len(t, listings, 2)

	listings = get("/api/listings?sortBy=price-low")
	require.Len(t, listings, 3)
	assert.Equal(t, "Cedar Flats", listings[0].Name)
	assert.Equal(t, "Maple Court", listings[2].Name)

	listings = get("/api/listings?search=oak")
	require.Len(t, listings, 1)
	assert.Equal(t, "Oak Villas", listings[0].Name)

	// Default order is by name.
	listings = get("/api/listings")
	require.Len(t, listings, 3)
	assert.Equal(t, "Cedar Flats", listings[0].Name)
	assert.Equal(t, "Maple Court", listings[1].Name)
	assert.Equal(t, "Oak Villas", listings[2].Name)
}
