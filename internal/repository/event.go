package repository

import (
	"context"
	"errors"
	"time"

	"eventhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines persistence operations for events.
type EventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id uint) (*models.Event, error)
	GetByIDWithCreator(ctx context.Context, id uint) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	UpdateImageURL(ctx context.Context, event *models.Event, imageURL string) error
	Delete(ctx context.Context, id uint) error
	CountCreatedSince(ctx context.Context, userID uint, since time.Time) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// creatorSummary limits the preloaded creator to its public identity.
func creatorSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func (r *eventRepository) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Preload("Creator", creatorSummary).
		Order("id").
		Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

func (r *eventRepository) GetByIDWithCreator(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).
		Preload("Creator", creatorSummary).
		First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Event", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error; err != nil {
		return translateWriteError(err, "Event already exists")
	}
	return nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error; err != nil {
		return translateWriteError(err, "Event already exists")
	}
	return nil
}

// UpdateImageURL writes only the image columns of a loaded event. Row hooks
// are skipped; the rest of the row is not touched.
func (r *eventRepository) UpdateImageURL(ctx context.Context, event *models.Event, imageURL string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(event).
		UpdateColumns(map[string]any{"image_url": imageURL, "updated_at": now})
	if result.Error != nil {
		return translateWriteError(result.Error, "Event already exists")
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Event", event.ID)
	}
	event.ImageURL = &imageURL
	event.UpdatedAt = now
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Event", id)
	}
	return nil
}

// CountCreatedSince counts events created by userID at or after since.
func (r *eventRepository) CountCreatedSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("created_by = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
