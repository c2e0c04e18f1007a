package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ratehousing_backend/internal/aggregate"
	"ratehousing_backend/internal/filter"
	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/database"
)

type ListingInput struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Price       string   `json:"price"`
	Bedrooms    string   `json:"bedrooms"`
	Bathrooms   string   `json:"bathrooms"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
}

// ListListings returns all listings with aggregates, optionally narrowed
// and ordered by filter/sort query parameters.
func ListListings(c *fiber.Ctx) error {
	listings, err := aggregate.ListWithAggregates(database.GetDB())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	criteria := criteriaFromQuery(c)
	listings = filter.Apply(listings, criteria)
	filter.Sort(listings, c.Query("sortBy", filter.SortName))

	return c.JSON(listings)
}

// GetListing returns a single listing with aggregates.
func GetListing(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing ID",
		})
	}

	listing, err := aggregate.GetWithAggregates(database.GetDB(), uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(listing)
}

// CreateListing creates a listing from a user submission.
func CreateListing(c *fiber.Ctx) error {
	input := new(ListingInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Address) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and address are required",
		})
	}

	listing := model.Listing{
		Name:        input.Name,
		Address:     input.Address,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Price:       input.Price,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}

	if err := database.GetDB().Create(&listing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

func criteriaFromQuery(c *fiber.Ctx) filter.Criteria {
	criteria := filter.Criteria{
		Query:        c.Query("search"),
		MinRating:    floatQuery(c, "minRating"),
		MaxRating:    floatQuery(c, "maxRating"),
		MinBedrooms:  intQuery(c, "minBedrooms"),
		MaxBedrooms:  intQuery(c, "maxBedrooms"),
		MinBathrooms: floatQuery(c, "minBathrooms"),
		MaxBathrooms: floatQuery(c, "maxBathrooms"),
		MinPrice:     floatQuery(c, "minPrice"),
		MaxPrice:     floatQuery(c, "maxPrice"),
	}

	if traits := c.Query("traits"); traits != "" {
		for _, t := range strings.Split(traits, ",") {
			if t = strings.TrimSpace(t); t != "" {
				criteria.Traits = append(criteria.Traits, t)
			}
		}
	}

	return criteria
}

func floatQuery(c *fiber.Ctx, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

func intQuery(c *fiber.Ctx, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}
