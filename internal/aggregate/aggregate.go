// Package aggregate keeps a listing's derived statistics consistent with
// its underlying reviews. Everything here is a full recompute over current
// rows, never an incremental counter, so concurrent writers converge to the
// correct value once all in-flight mutations commit.
package aggregate

import (
	"database/sql"
	"sort"
	"time"

	"gorm.io/gorm"

	"ratehousing_backend/internal/model"
)

// ListingAggregates are the derived per-listing fields computed from reviews.
type ListingAggregates struct {
	ReviewCount    int64      `json:"review_count"`
	MinPrice       *float64   `json:"min_price"`
	MaxPrice       *float64   `json:"max_price"`
	AvgPrice       float64    `json:"avg_price"`
	BedroomsSet    string     `json:"bedrooms_set"`
	BathroomsSet   string     `json:"bathrooms_set"`
	LatestReviewAt *time.Time `json:"latest_review_at"`
	TopTraits      []string   `json:"top_traits"`
}

// ListingWithAggregates is the listing shape returned by the REST boundary.
type ListingWithAggregates struct {
	model.Listing
	ListingAggregates

	// Loaded reviews (with traits) backing the existential filter pass.
	ReviewData []model.Review `json:"-"`
}

// RecomputeAverageRating recalculates AVG(rating) over all ratings joined
// through the listing's reviews and stores it on the listing. Writes 0 when
// no reviews exist so numeric comparisons stay predictable.
func RecomputeAverageRating(db *gorm.DB, listingID uint) error {
	var avg sql.NullFloat64
	err := db.Model(&model.Rating{}).
		Joins("JOIN reviews ON reviews.id = ratings.review_id AND reviews.deleted_at IS NULL").
		Where("reviews.listing_id = ?", listingID).
		Select("AVG(ratings.rating)").
		Scan(&avg).Error
	if err != nil {
		return err
	}

	value := 0.0
	if avg.Valid {
		value = avg.Float64
	}

	return db.Model(&model.Listing{}).
		Where("id = ?", listingID).
		Update("average_rating", value).Error
}

// RecomputeAllAverages re-runs the average recompute for every listing.
// Used by the nightly job and after bulk imports.
func RecomputeAllAverages(db *gorm.DB) error {
	var ids []uint
	if err := db.Model(&model.Listing{}).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := RecomputeAverageRating(db, id); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeVoteCounts refreshes a review's denormalized helpful counters
// from its vote rows.
func RecomputeVoteCounts(db *gorm.DB, reviewID uint) error {
	var helpful, notHelpful int64
	if err := db.Model(&model.ReviewVote{}).
		Where("review_id = ? AND vote_type = ?", reviewID, model.VoteHelpful).
		Count(&helpful).Error; err != nil {
		return err
	}
	if err := db.Model(&model.ReviewVote{}).
		Where("review_id = ? AND vote_type = ?", reviewID, model.VoteNotHelpful).
		Count(&notHelpful).Error; err != nil {
		return err
	}

	return db.Model(&model.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]interface{}{
			"helpful_count":     helpful,
			"not_helpful_count": notHelpful,
		}).Error
}

type reviewAggRow struct {
	ListingID   uint
	ReviewCount int64
	MinPrice    *float64
	MaxPrice    *float64
	AvgPrice    *float64
}

type distinctRow struct {
	ListingID uint
	Vals      string
}

type traitCountRow struct {
	ListingID uint
	Label     string
	Count     int64
}

// ListWithAggregates returns every listing annotated with its aggregates
// and its reviews (traits preloaded) for the filter pass.
func ListWithAggregates(db *gorm.DB) ([]ListingWithAggregates, error) {
	return listWithAggregates(db, 0)
}

// GetWithAggregates returns a single annotated listing, or
// gorm.ErrRecordNotFound when it does not exist.
func GetWithAggregates(db *gorm.DB, listingID uint) (*ListingWithAggregates, error) {
	results, err := listWithAggregates(db, listingID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &results[0], nil
}

func listWithAggregates(db *gorm.DB, listingID uint) ([]ListingWithAggregates, error) {
	listings := db.Model(&model.Listing{}).Order("name")
	if listingID != 0 {
		listings = listings.Where("id = ?", listingID)
	}

	var base []model.Listing
	if err := listings.Find(&base).Error; err != nil {
		return nil, err
	}
	if len(base) == 0 {
		return []ListingWithAggregates{}, nil
	}

	// Review counts and price range/mean per listing. MIN/MAX/AVG ignore
	// NULL rent prices.
	var aggRows []reviewAggRow
	if err := db.Model(&model.Review{}).
		Select("listing_id, COUNT(*) AS review_count, MIN(rent_price) AS min_price, " +
			"MAX(rent_price) AS max_price, AVG(rent_price) AS avg_price").
		Group("listing_id").
		Scan(&aggRows).Error; err != nil {
		return nil, err
	}
	aggByListing := make(map[uint]reviewAggRow, len(aggRows))
	for _, row := range aggRows {
		aggByListing[row.ListingID] = row
	}

	bedrooms, err := distinctValues(db, "bedrooms")
	if err != nil {
		return nil, err
	}
	bathrooms, err := distinctValues(db, "bathrooms")
	if err != nil {
		return nil, err
	}

	topTraits, err := topTraitsByListing(db)
	if err != nil {
		return nil, err
	}

	var reviews []model.Review
	reviewQuery := db.Preload("Traits")
	if listingID != 0 {
		reviewQuery = reviewQuery.Where("listing_id = ?", listingID)
	}
	if err := reviewQuery.Find(&reviews).Error; err != nil {
		return nil, err
	}
	reviewsByListing := make(map[uint][]model.Review)
	latestByListing := make(map[uint]time.Time)
	for _, r := range reviews {
		reviewsByListing[r.ListingID] = append(reviewsByListing[r.ListingID], r)
		if r.CreatedAt.After(latestByListing[r.ListingID]) {
			latestByListing[r.ListingID] = r.CreatedAt
		}
	}

	results := make([]ListingWithAggregates, 0, len(base))
	for _, listing := range base {
		agg := ListingAggregates{
			BedroomsSet:  bedrooms[listing.ID],
			BathroomsSet: bathrooms[listing.ID],
			TopTraits:    topTraits[listing.ID],
		}
		if row, ok := aggByListing[listing.ID]; ok {
			agg.ReviewCount = row.ReviewCount
			agg.MinPrice = row.MinPrice
			agg.MaxPrice = row.MaxPrice
			if row.AvgPrice != nil {
				agg.AvgPrice = *row.AvgPrice
			}
		}
		if latest, ok := latestByListing[listing.ID]; ok {
			t := latest
			agg.LatestReviewAt = &t
		}
		if agg.TopTraits == nil {
			agg.TopTraits = []string{}
		}

		results = append(results, ListingWithAggregates{
			Listing:           listing,
			ListingAggregates: agg,
			ReviewData:        reviewsByListing[listing.ID],
		})
	}

	return results, nil
}

// distinctValues returns the comma-joined distinct values of a per-review
// column (bedrooms or bathrooms) for each listing, skipping NULLs.
func distinctValues(db *gorm.DB, column string) (map[uint]string, error) {
	var rows []distinctRow
	err := db.Model(&model.Review{}).
		Select("listing_id, GROUP_CONCAT(DISTINCT "+column+") AS vals").
		Where(column + " IS NOT NULL").
		Group("listing_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	values := make(map[uint]string, len(rows))
	for _, row := range rows {
		values[row.ListingID] = row.Vals
	}
	return values, nil
}

// topTraitsByListing returns the three most frequent trait labels per listing.
func topTraitsByListing(db *gorm.DB) (map[uint][]string, error) {
	var rows []traitCountRow
	err := db.Model(&model.ReviewTrait{}).
		Select("reviews.listing_id AS listing_id, review_traits.label AS label, COUNT(*) AS count").
		Joins("JOIN reviews ON reviews.id = review_traits.review_id AND reviews.deleted_at IS NULL").
		Group("reviews.listing_id, review_traits.label").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byListing := make(map[uint][]traitCountRow)
	for _, row := range rows {
		byListing[row.ListingID] = append(byListing[row.ListingID], row)
	}

	top := make(map[uint][]string, len(byListing))
	for id, counts := range byListing {
		sort.SliceStable(counts, func(i, j int) bool {
			return counts[i].Count > counts[j].Count
		})
		n := len(counts)
		if n > 3 {
			n = 3
		}
		labels := make([]string, 0, n)
		for _, c := range counts[:n] {
			labels = append(labels, c.Label)
		}
		top[id] = labels
	}
	return top, nil
}
