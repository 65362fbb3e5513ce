// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"eventhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls how much demo data is generated.
type Options struct {
	NumUsers         int
	EventsPerUser    int
	MaxDaysAhead     int
	ShouldClean      bool
	RandomSeed       int64
	DescriptionRatio float64
}

// DefaultOptions mirrors the flags of cmd/seed.
func DefaultOptions() Options {
	return Options{
		NumUsers:         10,
		EventsPerUser:    3,
		MaxDaysAhead:     60,
		ShouldClean:      true,
		DescriptionRatio: 0.8,
	}
}

// Factory builds users and events and persists them.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	now  func() time.Time
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	if opts.MaxDaysAhead <= 0 {
		opts.MaxDaysAhead = 60
	}
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)),
		now:  time.Now,
	}
}

// BuildUser returns an unsaved user with a unique-looking email.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	user := &models.User{
		Name: first + " " + last,
		Email: fmt.Sprintf("%s.%s.%s@example.com",
			strings.ToLower(first), strings.ToLower(last), gofakeit.LetterN(6)),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildEvent returns an unsaved event owned by user, dated between one hour
// and MaxDaysAhead days in the future.
func (f *Factory) BuildEvent(user *models.User, overrides ...func(*models.Event)) *models.Event {
	daysAhead := f.rng.Intn(f.opts.MaxDaysAhead)
	hoursAhead := 1 + f.rng.Intn(23)
	date := f.now().Add(time.Duration(daysAhead)*24*time.Hour + time.Duration(hoursAhead)*time.Hour).Truncate(time.Minute)

	title := strings.TrimSuffix(gofakeit.Sentence(4), ".")
	if len(title) > models.EventTitleMaxLen {
		title = title[:models.EventTitleMaxLen]
	}
	if len(title) < models.EventTitleMinLen {
		title = gofakeit.HipsterWord() + " meetup"
	}

	event := &models.Event{
		Title:     title,
		Date:      date,
		CreatedBy: user.ID,
	}
	if f.rng.Float64() < f.opts.DescriptionRatio {
		desc := gofakeit.Paragraph(1, 3, 8, " ")
		event.Description = &desc
	}
	for _, override := range overrides {
		override(event)
	}
	return event
}

// CreateUser persists a built user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return user, nil
}

// CreateEvent persists a built event for user.
func (f *Factory) CreateEvent(ctx context.Context, user *models.User, overrides ...func(*models.Event)) (*models.Event, error) {
	event := f.BuildEvent(user, overrides...)
	if err := f.db.WithContext(ctx).Omit("Creator").Create(event).Error; err != nil {
		return nil, fmt.Errorf("create event for user %d: %w", user.ID, err)
	}
	return event, nil
}
