// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the author of events.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name" validate:"required"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email" validate:"required"`
	Events    []Event   `gorm:"foreignKey:CreatedBy" json:"events,omitempty" validate:"-"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// BeforeSave validates the row before it reaches the database.
func (u *User) BeforeSave(_ *gorm.DB) error {
	return validateRow(u)
}
