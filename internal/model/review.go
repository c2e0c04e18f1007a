package model

import (
	"gorm.io/gorm"
)

// Vote Types
type VoteType string

const (
	VoteHelpful    VoteType = "helpful"
	VoteNotHelpful VoteType = "not_helpful"
)

type Review struct {
	gorm.Model
	ListingID uint   `json:"listing_id" gorm:"not null;index"`
	UserID    uint   `json:"user_id" gorm:"not null;index"`
	Text      string `json:"text" gorm:"type:text;not null"`

	// Unit metadata reported by the reviewer, all optional.
	Bedrooms  *int     `json:"bedrooms"`
	Bathrooms *float64 `json:"bathrooms"`
	RentPrice *float64 `json:"rent_price"`

	// Denormalized counters, recomputed from votes after every vote change.
	HelpfulCount    int64 `json:"helpful_count" gorm:"default:0"`
	NotHelpfulCount int64 `json:"not_helpful_count" gorm:"default:0"`

	Listing            Listing             `json:"-" gorm:"foreignKey:ListingID"`
	User               User                `json:"-" gorm:"foreignKey:UserID"`
	Rating             Rating              `json:"rating" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	Images             []ReviewImage       `json:"images" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	Traits             []ReviewTrait       `json:"traits" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	Votes              []ReviewVote        `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
	ManagementResponse *ManagementResponse `json:"management_response,omitempty" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
}

type Rating struct {
	gorm.Model
	ReviewID uint `json:"review_id" gorm:"not null;uniqueIndex"`
	Rating   int  `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`

	Review *Review `json:"-" gorm:"foreignKey:ReviewID"`
}

type ReviewImage struct {
	gorm.Model
	ReviewID uint   `json:"review_id" gorm:"not null;index"`
	URL      string `json:"url" gorm:"not null"`

	Review Review `json:"-" gorm:"foreignKey:ReviewID"`
}

type ReviewTrait struct {
	gorm.Model
	ReviewID uint   `json:"review_id" gorm:"not null;index"`
	Label    string `json:"label" gorm:"not null"`

	Review Review `json:"-" gorm:"foreignKey:ReviewID"`
}

type ReviewVote struct {
	gorm.Model
	ReviewID       uint     `json:"review_id" gorm:"not null;uniqueIndex:idx_review_voter"`
	UserIdentifier string   `json:"user_identifier" gorm:"not null;uniqueIndex:idx_review_voter"`
	VoteType       VoteType `json:"vote_type" gorm:"not null"`

	Review Review `json:"-" gorm:"foreignKey:ReviewID"`
}

type ManagementResponse struct {
	gorm.Model
	ReviewID    uint   `json:"review_id" gorm:"not null;uniqueIndex"`
	ManagerName string `json:"manager_name" gorm:"not null"`
	Text        string `json:"text" gorm:"type:text;not null"`
	Verified    bool   `json:"verified" gorm:"default:false"`

	Review Review `json:"-" gorm:"foreignKey:ReviewID"`
}
