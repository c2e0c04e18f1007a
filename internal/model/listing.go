package model

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Listing struct {
	gorm.Model
	Name    string `json:"name" gorm:"not null"`
	Slug    string `json:"slug" gorm:"uniqueIndex"`
	Address string `json:"address"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Static strings shown when a listing has no reviews yet
	// (e.g. "1-2 bed", "$1,100+"). Derived ranges come from reviews.
	Price     string `json:"price"`
	Bedrooms  string `json:"bedrooms"`
	Bathrooms string `json:"bathrooms"`

	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`

	// Recomputed from ratings after every review mutation, 0 when
	// the listing has no reviews.
	AverageRating float64 `json:"average_rating" gorm:"default:0"`

	// Cached AI summary blob and its generation time.
	AISummary            datatypes.JSON `json:"ai_summary,omitempty"`
	AISummaryGeneratedAt *time.Time     `json:"ai_summary_generated_at,omitempty"`

	Reviews []Review `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns a unique slug derived from the listing name.
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.Slug == "" {
		s := slug.Make(l.Name)

		var count int64
		tx.Model(&Listing{}).Where("slug = ?", s).Count(&count)
		if count > 0 {
			s = fmt.Sprintf("%s-%s", s, time.Now().Format("20060102150405"))
		}

		l.Slug = s
	}
	return nil
}
