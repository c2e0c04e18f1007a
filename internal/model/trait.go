package model

// TraitCategories is the canonical trait vocabulary offered to reviewers
// and fed to the smart-match prompt. Reviews may still carry custom labels.
var TraitCategories = map[string][]string{
	"Living Experience": {
		"Quiet", "Noisy", "Safe", "Unsafe", "Clean", "Dirty",
		"Well-maintained", "Poorly maintained", "Pest problems", "No pest problems",
	},
	"Neighbors & Community": {
		"Friendly neighbors", "Rude neighbors", "Student-friendly", "Family-friendly",
		"Party environment", "Strict environment", "Pet-friendly", "Not pet-friendly",
	},
	"Interior Quality": {
		"Modern interior", "Outdated interior", "Good insulation", "Poor insulation",
		"Good heating", "Bad heating", "Good AC", "Bad AC",
		"High water pressure", "Low water pressure", "Good natural light", "Dark interior",
	},
	"Noise Sources": {
		"Thin walls", "Loud neighbors", "Street noise", "Very quiet area",
	},
	"Amenities": {
		"Laundry in unit", "Laundry in building", "No laundry", "Gym available",
		"Pool available", "Study rooms", "Parking included", "No parking",
		"Visitor parking available", "Secure entry",
	},
	"Location": {
		"Close to campus", "Far from campus", "Close to bus lines", "Walkable area",
		"Poor walkability", "Near grocery stores", "Near restaurants",
		"Good parking availability", "Bad parking situation",
	},
	"Management": {
		"Responsive management", "Unresponsive management", "Quick maintenance",
		"Slow maintenance", "Respectful staff", "Rude staff",
	},
	"Financial": {
		"Affordable", "Overpriced", "Good value", "Bad value", "Hidden fees",
	},
	"Utilities": {
		"Fast internet", "Slow internet", "Frequent outages", "Stable utilities",
	},
}

// AllTraits returns the vocabulary flattened into a single list.
func AllTraits() []string {
	var all []string
	for _, labels := range TraitCategories {
		all = append(all, labels...)
	}
	return all
}
