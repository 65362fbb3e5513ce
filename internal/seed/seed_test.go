package seed

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"eventhub/internal/database"
	"eventhub/internal/middleware"
	"eventhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestBuildEvent_IsUpcomingAndValid(t *testing.T) {
	f := NewFactory(nil, Options{MaxDaysAhead: 5, RandomSeed: 42, DescriptionRatio: 1})
	user := &models.User{ID: 7}

	for i := 0; i < 50; i++ {
		event := f.BuildEvent(user)
		assert.True(t, event.Date.After(time.Now()), "event date should be in the future")
		assert.True(t, event.Date.Before(time.Now().Add(6*24*time.Hour)))
		assert.GreaterOrEqual(t, len(event.Title), models.EventTitleMinLen)
		assert.LessOrEqual(t, len(event.Title), models.EventTitleMaxLen)
		assert.Equal(t, uint(7), event.CreatedBy)
		assert.NotNil(t, event.Description)
	}
}

func TestBuildUser_Overrides(t *testing.T) {
	f := NewFactory(nil, Options{RandomSeed: 1})
	user := f.BuildUser(func(u *models.User) { u.Email = "fixed@example.com" })

	assert.NotEmpty(t, user.Name)
	assert.Equal(t, "fixed@example.com", user.Email)
}

func TestSeeder_Run(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s := NewSeeder(db, Options{NumUsers: 4, EventsPerUser: 2, MaxDaysAhead: 10, RandomSeed: 99})
	res, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Users, 4)
	assert.Equal(t, 8, res.Events)

	var users, events int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Event{}).Count(&events).Error)
	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(8), events)

	var perCreator int64
	require.NoError(t, db.Model(&models.Event{}).Where("created_by = ?", res.Users[0].ID).Count(&perCreator).Error)
	assert.Equal(t, int64(2), perCreator)
}

func TestSeeder_CleanReplacesExistingData(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := NewSeeder(db, Options{NumUsers: 3, EventsPerUser: 1, RandomSeed: 5}).Run(ctx)
	require.NoError(t, err)

	_, err = NewSeeder(db, Options{NumUsers: 1, EventsPerUser: 1, ShouldClean: true, RandomSeed: 6}).Run(ctx)
	require.NoError(t, err)

	var users, events int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Event{}).Count(&events).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), events)
}

func TestSeeder_Logging(t *testing.T) {
	db := newTestDB(t)

	s := NewSeeder(db, Options{NumUsers: 2, EventsPerUser: 1, ShouldClean: true, RandomSeed: 3})
	assert.Same(t, middleware.Logger, s.logger)

	var buf bytes.Buffer
	s.WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "database cleared")
	assert.Contains(t, out, "seed complete")
	assert.Contains(t, out, "users=2")
	assert.Contains(t, out, "events=2")
}
