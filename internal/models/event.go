package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	EventTitleMinLen = 3
	EventTitleMaxLen = 200
)

// Event is a scheduled happening created by a User, optionally illustrated with an image.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title" validate:"required,min=3,max=200"`
	Description *string   `gorm:"type:text" json:"description"`
	Date        time.Time `gorm:"not null" json:"date" validate:"required"`
	CreatedBy   uint      `gorm:"not null;index:idx_events_creator_created_at,priority:1" json:"createdBy" validate:"required"`
	Creator     *User     `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"creator,omitempty" validate:"-"`
	ImageURL    *string   `json:"imageUrl"`
	CreatedAt   time.Time `gorm:"index:idx_events_creator_created_at,priority:2" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeSave re-checks the title bounds on every insert and update.
func (e *Event) BeforeSave(_ *gorm.DB) error {
	return validateRow(e)
}

// BeforeCreate rejects events scheduled in the past. Updates are checked by the service instead.
func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if !e.Date.After(time.Now()) {
		return NewValidationError("Validation failed", "Event date must be in the future")
	}
	return nil
}
