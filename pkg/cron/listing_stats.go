// pkg/cron/listing_stats.go
package cron

import (
	"log"

	"github.com/robfig/cron/v3"

	"ratehousing_backend/internal/aggregate"
	"ratehousing_backend/internal/model"
	"ratehousing_backend/pkg/database"
)

// InitListingStatsCron schedules the nightly full recompute of derived
// listing and review statistics. Request-path recomputes that failed leave
// stale values; this pass heals them.
func InitListingStatsCron() {
	c := cron.New()

	// Every night at 03:00
	_, err := c.AddFunc("0 3 * * *", recalcDerivedStats)
	if err != nil {
		log.Printf("Could not initialize listing stats cron: %v", err)
		return
	}

	c.Start()
}

func recalcDerivedStats() {
	db := database.GetDB()

	if err := aggregate.RecomputeAllAverages(db); err != nil {
		log.Printf("Error recomputing listing averages: %v", err)
	}

	var reviewIDs []uint
	if err := db.Model(&model.Review{}).Pluck("id", &reviewIDs).Error; err != nil {
		log.Printf("Error listing reviews for vote recount: %v", err)
		return
	}
	for _, id := range reviewIDs {
		if err := aggregate.RecomputeVoteCounts(db, id); err != nil {
			log.Printf("Error recomputing vote counts for review %d: %v", id, err)
		}
	}

	log.Println("Nightly stats recompute complete")
}
