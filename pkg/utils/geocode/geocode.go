// pkg/utils/geocode/geocode.go
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// Result is one Nominatim match, trimmed to what the map client needs.
type Result struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Search forwards an address query to Nominatim, biased to the app's city.
func Search(ctx context.Context, query, cityBias string) ([]Result, error) {
	q := query
	if cityBias != "" {
		q = query + ", " + cityBias
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", q)
	params.Set("limit", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nominatimURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Nominatim's usage policy requires an identifying user agent.
	req.Header.Set("User-Agent", "ratehousing-backend/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	var results []Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}
