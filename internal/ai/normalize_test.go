package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummaryStrictJSON(t *testing.T) {
	raw := `{"summary": "Great place overall.", "pros": ["Quiet", "Affordable"], "cons": ["Thin walls"], "keywords": ["quiet", "value"]}`

	s := ParseSummary(raw)

	assert.Equal(t, "Great place overall.", s.Summary)
	assert.Equal(t, []string{"Quiet", "Affordable"}, s.Pros)
	assert.Equal(t, []string{"Thin walls"}, s.Cons)
	assert.Equal(t, []string{"quiet", "value"}, s.Keywords)
}

func TestParseSummaryBareJSONString(t *testing.T) {
	s := ParseSummary(`"All reviewers loved this place."`)

	assert.Equal(t, "All reviewers loved this place.", s.Summary)
	assert.Empty(t, s.Pros)
	assert.Empty(t, s.Cons)
	assert.Empty(t, s.Keywords)
}

func TestParseSummaryFencedJSONBlock(t *testing.T) {
	raw := "Here is the summary you asked for:\n```json\n" +
		`{"summary": "Solid mid-range option.", "pros": ["Parking included"], "cons": [], "keywords": ["parking"]}` +
		"\n```\nLet me know if you need anything else!"

	s := ParseSummary(raw)

	assert.Equal(t, "Solid mid-range option.", s.Summary)
	assert.Equal(t, []string{"Parking included"}, s.Pros)
	assert.Empty(t, s.Cons)
}

func TestParseSummarySectionScraping(t *testing.T) {
	raw := `The reviews are mostly positive about this building.

Pros:
- Quiet area
- Responsive management

Cons:
- Thin walls

Keywords: quiet, affordable`

	s := ParseSummary(raw)

	assert.Equal(t, "The reviews are mostly positive about this building.", s.Summary)
	assert.Equal(t, []string{"Quiet area", "Responsive management"}, s.Pros)
	assert.Equal(t, []string{"Thin walls"}, s.Cons)
	assert.Equal(t, []string{"quiet", "affordable"}, s.Keywords)
}

func TestParseSummaryRawPassthroughNeverFails(t *testing.T) {
	raw := "I think this place is nice but not great."

	s := ParseSummary(raw)

	assert.Equal(t, raw, s.Summary)
	assert.Equal(t, []string{}, s.Pros)
	assert.Equal(t, []string{}, s.Cons)
	assert.Equal(t, []string{}, s.Keywords)
}

func TestParseSummaryStageOrder(t *testing.T) {
	// Strict JSON wins over scraping even when section headers appear
	// inside the JSON strings.
	raw := `{"summary": "Pros: none to speak of.", "pros": [], "cons": [], "keywords": []}`

	s := ParseSummary(raw)

	assert.Equal(t, "Pros: none to speak of.", s.Summary)
	assert.Empty(t, s.Pros)
}

func TestParseSmartMatchJSON(t *testing.T) {
	raw := `{"hasMatch": true, "filters": {"minBedrooms": 2, "maxPrice": 1500, "traits": ["Pet-friendly"]}, "sortBy": "price-low", "message": "Found some matches!"}`

	m := ParseSmartMatch(raw)

	assert.True(t, m.HasMatch)
	require.NotNil(t, m.Filters)
	require.NotNil(t, m.Filters.MinBedrooms)
	assert.Equal(t, 2, *m.Filters.MinBedrooms)
	require.NotNil(t, m.Filters.MaxPrice)
	assert.Equal(t, 1500.0, *m.Filters.MaxPrice)
	assert.Equal(t, []string{"Pet-friendly"}, m.Filters.Traits)
	assert.Equal(t, "price-low", m.SortBy)
	assert.Equal(t, "Found some matches!", m.Message)
}

func TestParseSmartMatchFallsBackToClarifyingMessage(t *testing.T) {
	raw := "Could you tell me more about your budget?"

	m := ParseSmartMatch(raw)

	assert.False(t, m.HasMatch)
	assert.Nil(t, m.Filters)
	assert.Equal(t, raw, m.Message)
}

func TestSplitItemsKeepsHyphenatedWords(t *testing.T) {
	items := splitItems("Well-maintained building - Pet-friendly - Quiet")

	assert.Equal(t, []string{"Well-maintained building", "Pet-friendly", "Quiet"}, items)
}
