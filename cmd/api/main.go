package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"ratehousing_backend/internal/ai"
	"ratehousing_backend/internal/controller"
	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/config"
	"ratehousing_backend/pkg/cron"
	"ratehousing_backend/pkg/database"
	"ratehousing_backend/pkg/seed"
	"ratehousing_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Listings
	api.Get("/listings", controller.ListListings)
	api.Post("/listings", controller.CreateListing)
	api.Get("/listings/:id", controller.GetListing)

	// AI summaries
	api.Post("/listings/:id/generate-summary", controller.GenerateSummary)
	api.Get("/listings/:id/summary", controller.GetSummary)

	// Reviews
	api.Get("/reviews/listing/:id", controller.GetListingReviews)
	api.Post("/reviews", controller.CreateReview)
	api.Delete("/reviews/:id", controller.DeleteReview)

	// Votes
	api.Post("/reviews/:id/vote", controller.VoteOnReview)
	api.Delete("/reviews/:id/vote", controller.RemoveVote)

	// Management responses
	api.Post("/reviews/:id/management-response", controller.UpsertManagementResponse)

	// Smart match
	api.Post("/smart-match", controller.SmartMatch)

	// Trait vocabulary
	api.Get("/traits", controller.GetTraits)

	// Geocoding proxy
	api.Get("/geocode", controller.Geocode)
}

func main() {
	cfg := config.Load()

	database.InitDB(cfg.Database.Path)
	err := database.MigrateDatabase(
		&model.User{},
		&model.Listing{},
		&model.Review{},
		&model.Rating{},
		&model.ReviewImage{},
		&model.ReviewTrait{},
		&model.ReviewVote{},
		&model.ManagementResponse{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	uploads, err := storage.New(cfg.Uploads)
	if err != nil {
		log.Fatal("Could not initialize upload storage:", err)
	}
	controller.InitReviewController(uploads)

	aiClient, err := ai.NewClient(cfg.AI)
	if err != nil {
		log.Fatal("Could not initialize AI client:", err)
	}
	controller.InitAIControllers(aiClient)

	cron.InitListingStatsCron()

	if path := os.Getenv("IMPORT_LISTINGS"); path != "" {
		if err := seed.ImportListingsFromFile(database.GetDB(), path); err != nil {
			log.Printf("Listing import warning: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.FrontendURL,
	}))

	if cfg.Uploads.Driver == "local" || cfg.Uploads.Driver == "" {
		app.Static("/uploads", cfg.Uploads.Dir)
	}

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
