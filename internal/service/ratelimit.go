// Package service contains the business logic for users, events and uploads.
package service

import (
	"context"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/repository"
)

const (
	DefaultMaxEventsPerDay = 10
	// EventLimitWindow is the sliding window counted by the limiter.
	EventLimitWindow = 24 * time.Hour
)

// LimitSummary reports a user's usage of the daily event quota.
type LimitSummary struct {
	Max       int   `json:"max"`
	Current   int64 `json:"current"`
	Remaining int64 `json:"remaining"`
}

// EventLimiter enforces the per-user cap on events created in the last 24 hours.
// The count is read before the insert, so concurrent creates may overshoot the cap.
type EventLimiter struct {
	repo      repository.EventRepository
	maxPerDay int
	now       func() time.Time
}

func NewEventLimiter(repo repository.EventRepository, maxPerDay int) *EventLimiter {
	if maxPerDay <= 0 {
		maxPerDay = DefaultMaxEventsPerDay
	}
	return &EventLimiter{repo: repo, maxPerDay: maxPerDay, now: time.Now}
}

// WithClock replaces the limiter's time source.
func (l *EventLimiter) WithClock(now func() time.Time) *EventLimiter {
	l.now = now
	return l
}

// MaxPerDay returns the configured cap.
func (l *EventLimiter) MaxPerDay() int {
	return l.maxPerDay
}

// Check returns a rate-limited AppError once userID has reached the cap.
func (l *EventLimiter) Check(ctx context.Context, userID uint) error {
	now := l.now()
	count, err := l.repo.CountCreatedSince(ctx, userID, now.Add(-EventLimitWindow))
	if err != nil {
		return err
	}
	if count >= int64(l.maxPerDay) {
		return models.NewRateLimitedError(l.maxPerDay, count, now.Add(EventLimitWindow))
	}
	return nil
}

// Summary recomputes the quota counters for userID.
func (l *EventLimiter) Summary(ctx context.Context, userID uint) (LimitSummary, error) {
	count, err := l.repo.CountCreatedSince(ctx, userID, l.now().Add(-EventLimitWindow))
	if err != nil {
		return LimitSummary{}, err
	}
	return LimitSummary{
		Max:       l.maxPerDay,
		Current:   count,
		Remaining: int64(l.maxPerDay) - count,
	}, nil
}
