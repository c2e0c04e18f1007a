// Package filter narrows and orders the listing collection.
//
// Rating bounds apply to the listing's average. Bedroom, bathroom, price
// and trait constraints are per-review: a listing passes when at least one
// of its reviews satisfies every active constraint at once. A listing whose
// reviews individually satisfy different constraints does not pass.
package filter

import (
	"sort"
	"strings"
	"time"

	"ratehousing_backend/internal/aggregate"
	"ratehousing_backend/internal/model"
)

// Sort keys accepted by the listings endpoint and the smart-match agent.
const (
	SortName         = "name"
	SortRatingHigh   = "rating-high"
	SortRatingLow    = "rating-low"
	SortPriceLow     = "price-low"
	SortPriceHigh    = "price-high"
	SortMostReviewed = "most-reviewed"
	SortNewest       = "newest"
)

// Criteria holds the active filters. Nil numeric fields are open-ended.
// JSON tags match the shape the smart-match agent produces.
type Criteria struct {
	Query        string   `json:"query,omitempty"`
	MinRating    *float64 `json:"minRating,omitempty"`
	MaxRating    *float64 `json:"maxRating,omitempty"`
	MinBedrooms  *int     `json:"minBedrooms,omitempty"`
	MaxBedrooms  *int     `json:"maxBedrooms,omitempty"`
	MinBathrooms *float64 `json:"minBathrooms,omitempty"`
	MaxBathrooms *float64 `json:"maxBathrooms,omitempty"`
	MinPrice     *float64 `json:"minPrice,omitempty"`
	MaxPrice     *float64 `json:"maxPrice,omitempty"`
	Traits       []string `json:"traits,omitempty"`
}

// ActiveCount tallies how many filter fields are set. Display only.
func (c Criteria) ActiveCount() int {
	count := 0
	for _, set := range []bool{
		c.MinRating != nil, c.MaxRating != nil,
		c.MinBedrooms != nil, c.MaxBedrooms != nil,
		c.MinBathrooms != nil, c.MaxBathrooms != nil,
		c.MinPrice != nil, c.MaxPrice != nil,
	} {
		if set {
			count++
		}
	}
	return count + len(c.Traits)
}

func (c Criteria) needsReviewData() bool {
	return c.MinBedrooms != nil || c.MaxBedrooms != nil ||
		c.MinBathrooms != nil || c.MaxBathrooms != nil ||
		c.MinPrice != nil || c.MaxPrice != nil ||
		len(c.Traits) > 0
}

// Apply returns the listings matching the criteria, preserving input order.
func Apply(listings []aggregate.ListingWithAggregates, c Criteria) []aggregate.ListingWithAggregates {
	matched := make([]aggregate.ListingWithAggregates, 0, len(listings))
	for _, listing := range listings {
		if Match(listing, c) {
			matched = append(matched, listing)
		}
	}
	return matched
}

// Match reports whether a single listing satisfies the criteria.
func Match(listing aggregate.ListingWithAggregates, c Criteria) bool {
	if q := strings.TrimSpace(c.Query); q != "" {
		if !strings.Contains(strings.ToLower(listing.Name), strings.ToLower(q)) {
			return false
		}
	}

	if c.MinRating != nil || c.MaxRating != nil {
		rating := listing.AverageRating
		if c.MinRating != nil && rating < *c.MinRating {
			return false
		}
		if c.MaxRating != nil && rating > *c.MaxRating {
			return false
		}
	}

	if !c.needsReviewData() {
		return true
	}

	// Existential match: some single review has to satisfy everything.
	for _, review := range listing.ReviewData {
		if reviewMatches(review, c) {
			return true
		}
	}
	return false
}

func reviewMatches(review model.Review, c Criteria) bool {
	if c.MinBedrooms != nil && (review.Bedrooms == nil || *review.Bedrooms < *c.MinBedrooms) {
		return false
	}
	if c.MaxBedrooms != nil && (review.Bedrooms == nil || *review.Bedrooms > *c.MaxBedrooms) {
		return false
	}
	if c.MinBathrooms != nil && (review.Bathrooms == nil || *review.Bathrooms < *c.MinBathrooms) {
		return false
	}
	if c.MaxBathrooms != nil && (review.Bathrooms == nil || *review.Bathrooms > *c.MaxBathrooms) {
		return false
	}
	if c.MinPrice != nil && (review.RentPrice == nil || *review.RentPrice < *c.MinPrice) {
		return false
	}
	if c.MaxPrice != nil && (review.RentPrice == nil || *review.RentPrice > *c.MaxPrice) {
		return false
	}

	// All requested traits must appear on this review; matching is
	// case-insensitive substring, so "Parking" hits "Parking included".
	for _, wanted := range c.Traits {
		found := false
		for _, trait := range review.Traits {
			if strings.Contains(strings.ToLower(trait.Label), strings.ToLower(wanted)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Sort orders listings in place by the given key. Unknown keys fall back
// to name order.
func Sort(listings []aggregate.ListingWithAggregates, sortBy string) {
	switch sortBy {
	case SortRatingHigh:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].AverageRating > listings[j].AverageRating
		})
	case SortRatingLow:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].AverageRating < listings[j].AverageRating
		})
	case SortPriceLow:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].AvgPrice < listings[j].AvgPrice
		})
	case SortPriceHigh:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].AvgPrice > listings[j].AvgPrice
		})
	case SortMostReviewed:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].ReviewCount > listings[j].ReviewCount
		})
	case SortNewest:
		// Listings with no reviews sort last.
		sort.SliceStable(listings, func(i, j int) bool {
			return latestReview(listings[i]).After(latestReview(listings[j]))
		})
	case SortName:
		fallthrough
	default:
		sort.SliceStable(listings, func(i, j int) bool {
			return strings.ToLower(listings[i].Name) < strings.ToLower(listings[j].Name)
		})
	}
}

func latestReview(listing aggregate.ListingWithAggregates) time.Time {
	if listing.LatestReviewAt == nil {
		return time.Time{}
	}
	return *listing.LatestReviewAt
}
