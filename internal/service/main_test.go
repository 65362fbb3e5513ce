package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/database"
	"eventhub/internal/models"
	"eventhub/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated in-memory SQLite database private to the test.
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

type testDeps struct {
	db      *gorm.DB
	users   *UserService
	events  *EventService
	limiter *EventLimiter
	images  *ImageStore
	cfg     *config.Config
}

func newTestDeps(t *testing.T, maxPerDay int) *testDeps {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{UploadDir: t.TempDir(), ImageMaxUploadSizeMB: 2, MaxEventsPerDay: maxPerDay}
	eventRepo := repository.NewEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	limiter := NewEventLimiter(eventRepo, cfg.MaxEventsPerDay)
	images := NewImageStore(cfg)

	return &testDeps{
		db:      db,
		users:   NewUserService(userRepo),
		events:  NewEventService(eventRepo, userRepo, limiter, images),
		limiter: limiter,
		images:  images,
		cfg:     cfg,
	}
}

func (d *testDeps) mustCreateUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user, err := d.users.CreateUser(context.Background(), CreateUserInput{Name: name, Email: email})
	require.NoError(t, err)
	return user
}

func (d *testDeps) mustCreateEvent(t *testing.T, userID uint, title string) *models.Event {
	t.Helper()
	date := time.Now().Add(48 * time.Hour)
	res, err := d.events.CreateEvent(context.Background(), CreateEventInput{
		Title:     title,
		Date:      &date,
		CreatedBy: userID,
	})
	require.NoError(t, err)
	return res.Event
}

func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func assertKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	appErr := models.AsAppError(err)
	require.Equalf(t, kind, appErr.Kind, "unexpected error kind for %v", err)
}

func strPtr(s string) *string { return &s }
