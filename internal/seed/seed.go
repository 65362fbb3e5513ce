package seed

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub/internal/middleware"
	"eventhub/internal/models"

	"gorm.io/gorm"
)

// Result summarizes a seeding run.
type Result struct {
	Users  []models.User
	Events int
}

// Seeder fills the database with demo users and events.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
	logger  *slog.Logger
}

// NewSeeder creates a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts, logger: middleware.Logger}
}

// WithLogger replaces the application logger for this seeder.
func (s *Seeder) WithLogger(l *slog.Logger) *Seeder {
	if l != nil {
		s.logger = l
	}
	return s
}

// ClearAll removes every event and user. Events go first because of the
// creator foreign key.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := tx.Delete(&models.Event{}).Error; err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	if err := tx.Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	s.logger.InfoContext(ctx, "database cleared")
	return nil
}

// Run seeds NumUsers users, each with EventsPerUser upcoming events.
// EventsPerUser is not capped here; a value above the daily limit leaves
// those users unable to create more events through the API for 24 hours.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	res := &Result{Users: make([]models.User, 0, s.opts.NumUsers)}
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.factory.CreateUser(ctx)
		if err != nil {
			return nil, err
		}
		for j := 0; j < s.opts.EventsPerUser; j++ {
			if _, err := s.factory.CreateEvent(ctx, user); err != nil {
				return nil, err
			}
			res.Events++
		}
		res.Users = append(res.Users, *user)
	}

	s.logger.InfoContext(ctx, "seed complete", slog.Int("users", len(res.Users)), slog.Int("events", res.Events))
	return res, nil
}
