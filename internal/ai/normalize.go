// Package ai wraps the external LLM calls and coerces their free-text
// completions into fixed result shapes. The model does not reliably follow
// format instructions, so parsing is an ordered chain of attempts; the
// caller never sees a parse error.
package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"ratehousing_backend/internal/filter"
)

// Summary is the normalized shape of a review-summary completion.
type Summary struct {
	Summary  string   `json:"summary"`
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
	Keywords []string `json:"keywords"`
}

// SmartMatch is the normalized shape of a smart-match completion.
type SmartMatch struct {
	HasMatch bool             `json:"hasMatch"`
	Filters  *filter.Criteria `json:"filters,omitempty"`
	SortBy   string           `json:"sortBy,omitempty"`
	Message  string           `json:"message"`
}

// ParseSummary normalizes a raw summary completion. The chain is: strict
// JSON, first {...} block, section scraping, raw passthrough. Worst case
// the whole response lands in Summary with empty lists.
func ParseSummary(raw string) Summary {
	raw = strings.TrimSpace(raw)

	if s, ok := parseSummaryJSON(raw); ok {
		return s
	}
	if s, ok := parseSummaryBlock(raw); ok {
		return s
	}
	if s, ok := scrapeSections(raw); ok {
		return s
	}
	return withDefaults(Summary{Summary: raw})
}

// ParseSmartMatch normalizes a raw smart-match completion. Unparseable
// responses become a clarifying message; filters are never invented from
// free text.
func ParseSmartMatch(raw string) SmartMatch {
	raw = strings.TrimSpace(raw)

	var m SmartMatch
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		return m
	}

	return SmartMatch{HasMatch: false, Message: raw}
}

// parseSummaryJSON attempts a direct parse of the full response. A bare
// JSON string is wrapped as the summary text.
func parseSummaryJSON(raw string) (Summary, bool) {
	var s Summary
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return withDefaults(s), true
	}

	var text string
	if err := json.Unmarshal([]byte(raw), &text); err == nil {
		return withDefaults(Summary{Summary: text}), true
	}

	return Summary{}, false
}

// parseSummaryBlock parses the first greedy {...} block inside the text,
// which covers completions wrapped in prose or markdown fences.
func parseSummaryBlock(raw string) (Summary, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Summary{}, false
	}

	var s Summary
	if err := json.Unmarshal([]byte(raw[start:end+1]), &s); err != nil {
		return Summary{}, false
	}
	return withDefaults(s), true
}

var sectionHeaderRe = regexp.MustCompile(`(?i)^\s*(?:[*#>-]\s*)*\**(pros|cons|keywords)\**\s*:?\s*(.*)$`)

// scrapeSections pulls Pros/Cons/Keywords lists out of loosely formatted
// text. Succeeds when at least one section yields items; text before the
// first header becomes the summary.
func scrapeSections(raw string) (Summary, bool) {
	sections := map[string][]string{}
	var leading []string
	current := ""
	seenHeader := false

	for _, line := range strings.Split(raw, "\n") {
		if m := sectionHeaderRe.FindStringSubmatch(line); m != nil {
			current = strings.ToLower(m[1])
			seenHeader = true
			if rest := strings.TrimSpace(m[2]); rest != "" {
				sections[current] = append(sections[current], splitItems(rest)...)
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			current = ""
			continue
		}
		if current == "" {
			if !seenHeader {
				leading = append(leading, trimmed)
			}
			continue
		}
		sections[current] = append(sections[current], splitItems(trimmed)...)
	}

	if len(sections["pros"]) == 0 && len(sections["cons"]) == 0 && len(sections["keywords"]) == 0 {
		return Summary{}, false
	}

	return withDefaults(Summary{
		Summary:  strings.Join(leading, " "),
		Pros:     sections["pros"],
		Cons:     sections["cons"],
		Keywords: sections["keywords"],
	}), true
}

var itemSplitRe = regexp.MustCompile(`\s+[-–•]\s+|\s*[•]\s*|,\s+`)

// splitItems splits a scraped line into list items, tolerating bullets,
// spaced hyphens and comma lists without breaking hyphenated words.
func splitItems(s string) []string {
	s = strings.TrimLeft(s, "-–•* \t")
	var items []string
	for _, part := range itemSplitRe.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func withDefaults(s Summary) Summary {
	if s.Pros == nil {
		s.Pros = []string{}
	}
	if s.Cons == nil {
		s.Cons = []string{}
	}
	if s.Keywords == nil {
		s.Keywords = []string{}
	}
	return s
}
