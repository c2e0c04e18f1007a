package ai

import (
	"fmt"
	"sort"
	"strings"

	"ratehousing_backend/internal/model"
)

// BuildSummaryPrompt assembles the review corpus for a listing. With no
// reviews the listing description stands in; with neither, a placeholder
// noting that no information exists.
func BuildSummaryPrompt(listing model.Listing, reviews []model.Review) string {
	var corpus strings.Builder

	if len(reviews) > 0 {
		for i, review := range reviews {
			fmt.Fprintf(&corpus, "Review %d (rating %d/5):\n%s\n", i+1, review.Rating.Rating, review.Text)
			if len(review.Traits) > 0 {
				labels := make([]string, 0, len(review.Traits))
				for _, t := range review.Traits {
					labels = append(labels, t.Label)
				}
				fmt.Fprintf(&corpus, "Traits: %s\n", strings.Join(labels, ", "))
			}
			if review.Bedrooms != nil {
				fmt.Fprintf(&corpus, "Bedrooms: %d\n", *review.Bedrooms)
			}
			if review.Bathrooms != nil {
				fmt.Fprintf(&corpus, "Bathrooms: %g\n", *review.Bathrooms)
			}
			if review.RentPrice != nil {
				fmt.Fprintf(&corpus, "Rent: $%.0f/month\n", *review.RentPrice)
			}
			corpus.WriteString("\n")
		}
	} else if strings.TrimSpace(listing.Description) != "" {
		fmt.Fprintf(&corpus, "No reviews yet. Listing description:\n%s\n", listing.Description)
	} else {
		corpus.WriteString("No reviews or description are available for this listing.\n")
	}

	return fmt.Sprintf(`You summarize apartment reviews for "%s".

Based on the text below, respond with ONLY a JSON object in this exact shape:
{"summary": "2-3 sentence overview", "pros": ["..."], "cons": ["..."], "keywords": ["3-5 short labels"]}

%s`, listing.Name, corpus.String())
}

// SmartMatchSystemPrompt instructs the model to map free-text housing
// preferences onto the filter criteria shape. Trait values are expected to
// come from the canonical vocabulary, though that is a prompt contract only.
func SmartMatchSystemPrompt() string {
	categories := make([]string, 0, len(model.TraitCategories))
	for name := range model.TraitCategories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	var vocab strings.Builder
	for _, name := range categories {
		fmt.Fprintf(&vocab, "%s: %s\n", name, strings.Join(model.TraitCategories[name], ", "))
	}

	return fmt.Sprintf(`You are a housing assistant that converts what a user wants into search filters.

When the user's request is specific enough, respond with ONLY a JSON object:
{"hasMatch": true, "filters": {"minRating": null, "maxRating": null, "minBedrooms": null, "maxBedrooms": null, "minBathrooms": null, "maxBathrooms": null, "minPrice": null, "maxPrice": null, "traits": []}, "sortBy": "rating-high", "message": "short confirmation for the user"}

Omit or null any filter the user did not mention. Numeric fields must be numbers, not strings. Valid sortBy values: name, rating-high, rating-low, price-low, price-high, most-reviewed, newest.

Trait values must be chosen from this vocabulary:
%s
When the request is too vague to produce filters, respond with ONLY:
{"hasMatch": false, "message": "a clarifying question"}`, vocab.String())
}
