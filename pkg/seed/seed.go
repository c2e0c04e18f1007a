package seed

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"ratehousing_backend/internal/model"
)

type listingRecord struct {
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

type listingFile struct {
	Listings []listingRecord `json:"listings"`
	Data     []listingRecord `json:"data"`
}

// ImportListingsFromFile bulk-loads listings from a JSON file holding
// either a bare array or an object with a listings/data array. Existing
// listings (same name and address) are skipped.
func ImportListingsFromFile(db *gorm.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read listings file: %v", err)
	}

	var records []listingRecord
	if err := json.Unmarshal(content, &records); err != nil {
		var wrapped listingFile
		if err := json.Unmarshal(content, &wrapped); err != nil {
			return fmt.Errorf("could not parse listings file: %v", err)
		}
		records = wrapped.Listings
		if len(records) == 0 {
			records = wrapped.Data
		}
	}

	if len(records) == 0 {
		return fmt.Errorf("no listings found in %s", path)
	}

	imported := 0
	skipped := 0
	for _, record := range records {
		if record.Name == "" {
			skipped++
			continue
		}

		var count int64
		db.Model(&model.Listing{}).
			Where("name = ? AND address = ?", record.Name, record.Address).
			Count(&count)
		if count > 0 {
			skipped++
			continue
		}

		listing := model.Listing{
			Name:        record.Name,
			Address:     record.Address,
			Latitude:    record.Latitude,
			Longitude:   record.Longitude,
			Price:       record.Price,
			Bedrooms:    record.Bedrooms,
			Bathrooms:   record.Bathrooms,
			Description: record.Description,
			ImageURL:    record.ImageURL,
		}
		if err := db.Create(&listing).Error; err != nil {
			log.Printf("Error importing listing %s: %v", record.Name, err)
			skipped++
			continue
		}
		imported++
	}

	log.Printf("Imported %d listing(s), skipped %d", imported, skipped)
	return nil
}
