package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"eventhub/internal/models"
	"eventhub/internal/observability"
	"eventhub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type EventService struct {
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
	limiter   *EventLimiter
	images    *ImageStore
	logger    *slog.Logger
	now       func() time.Time
}

type CreateEventInput struct {
	Title       string
	Description *string
	Date        *time.Time
	CreatedBy   uint
}

// UpdateEventInput carries a partial update. Empty strings and nil pointers keep the stored value.
type UpdateEventInput struct {
	ID          uint
	Title       string
	Description *string
	Date        *time.Time
}

// CreateEventResult is the created event plus the creator's refreshed quota.
type CreateEventResult struct {
	Event  *models.Event `json:"event"`
	Limits LimitSummary  `json:"limits"`
}

// AttachImageResult is returned after an image replaces an event's picture.
type AttachImageResult struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

func NewEventService(
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
	limiter *EventLimiter,
	images *ImageStore,
) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		userRepo:  userRepo,
		limiter:   limiter,
		images:    images,
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// WithLogger sets the logger used for best-effort cleanup failures.
func (s *EventService) WithLogger(l *slog.Logger) *EventService {
	if l != nil {
		s.logger = l
	}
	return s
}

// validTitle mirrors the model's min length rule, counted in characters.
func validTitle(title string) bool {
	return utf8.RuneCountInString(title) >= models.EventTitleMinLen
}

// ParseEventID converts a raw path segment into an event ID.
func ParseEventID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, models.NewInvalidArgumentError("Invalid event ID")
	}
	return uint(id), nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.eventRepo.List(ctx)
}

// GetEvent loads one event with its creator. rawID must be numeric.
func (s *EventService) GetEvent(ctx context.Context, rawID string) (*models.Event, error) {
	id, err := ParseEventID(rawID)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.GetByIDWithCreator(ctx, id)
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*CreateEventResult, error) {
	span, ctx := observability.StartSpan(ctx, "EventService.CreateEvent",
		attribute.Int64("event.created_by", int64(in.CreatedBy)),
	)
	defer span.End()

	var errs []string
	if !validTitle(in.Title) {
		errs = append(errs, fmt.Sprintf("Title must be at least %d characters", models.EventTitleMinLen))
	}
	if in.Date == nil || in.Date.IsZero() {
		errs = append(errs, "Event date is required")
	}
	if in.CreatedBy == 0 {
		errs = append(errs, "Creator ID is required")
	}
	if len(errs) > 0 {
		return nil, models.NewValidationError("Validation failed", errs...)
	}

	exists, err := s.userRepo.Exists(ctx, in.CreatedBy)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User", in.CreatedBy)
	}

	event := &models.Event{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date.UTC(),
		CreatedBy:   in.CreatedBy,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.SetError(err)
		return nil, err
	}
	observability.EventsCreated.Inc()
	span.AddAttributes(attribute.Int64("event.id", int64(event.ID)))

	limits, err := s.limiter.Summary(ctx, in.CreatedBy)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &CreateEventResult{Event: event, Limits: limits}, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		if !validTitle(in.Title) {
			return nil, models.NewValidationError(fmt.Sprintf("Title must be at least %d characters", models.EventTitleMinLen))
		}
		event.Title = in.Title
	}
	if in.Description != nil && *in.Description != "" {
		event.Description = in.Description
	}
	if in.Date != nil && !in.Date.IsZero() {
		if !in.Date.After(s.now()) {
			return nil, models.NewValidationError("Validation failed", "Event date must be in the future")
		}
		event.Date = in.Date.UTC()
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent removes the event and returns a confirmation message.
// The image file, if any, is left on disk.
func (s *EventService) DeleteEvent(ctx context.Context, id uint) (string, error) {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Event with ID %d deleted successfully", id), nil
}

// AttachImage points the event at an already stored upload. The upload is
// discarded when the event is missing or the update fails; the previous image
// is removed best-effort.
func (s *EventService) AttachImage(ctx context.Context, id uint, img *StoredImage) (*AttachImageResult, error) {
	span, ctx := observability.StartSpan(ctx, "EventService.AttachImage",
		attribute.Int64("event.id", int64(id)),
	)
	defer span.End()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		s.discardUpload(ctx, img)
		observability.ImageUploads.WithLabelValues(observability.UploadRejected).Inc()
		return nil, err
	}

	if event.ImageURL != nil && *event.ImageURL != "" {
		if rmErr := s.images.Remove(*event.ImageURL); rmErr != nil {
			observability.OrphanCleanupFailures.Inc()
			s.logger.WarnContext(ctx, "failed to remove previous event image",
				slog.Uint64("event_id", uint64(id)),
				slog.String("image_url", *event.ImageURL),
				slog.String("error", rmErr.Error()),
			)
		}
	}

	if err := s.eventRepo.UpdateImageURL(ctx, event, img.PublicURL); err != nil {
		span.SetError(err)
		s.discardUpload(ctx, img)
		observability.ImageUploads.WithLabelValues(observability.UploadFailed).Inc()
		return nil, err
	}
	observability.ImageUploads.WithLabelValues(observability.UploadStored).Inc()

	return &AttachImageResult{
		Message:  "Image uploaded successfully",
		ImageURL: img.PublicURL,
	}, nil
}

func (s *EventService) discardUpload(ctx context.Context, img *StoredImage) {
	if img == nil {
		return
	}
	if err := s.images.Remove(img.PublicURL); err != nil {
		observability.OrphanCleanupFailures.Inc()
		s.logger.ErrorContext(ctx, "failed to remove uploaded image",
			slog.String("path", img.Path),
			slog.String("error", err.Error()),
		)
	}
}
