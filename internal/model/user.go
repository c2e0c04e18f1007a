package model

import (
	"gorm.io/gorm"
)

// User is identified by display name only; created implicitly the first
// time a review is submitted under that name.
type User struct {
	gorm.Model
	Name string `json:"name" gorm:"not null;uniqueIndex"`

	Reviews []Review `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
