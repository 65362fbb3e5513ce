package service

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEvent(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	ctx := context.Background()

	t.Run("future date and existing creator", func(t *testing.T) {
		date := time.Now().Add(72 * time.Hour)
		res, err := d.events.CreateEvent(ctx, CreateEventInput{
			Title:       "Go meetup",
			Description: strPtr("Talks and pizza"),
			Date:        &date,
			CreatedBy:   user.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Event)
		assert.NotZero(t, res.Event.ID)
		assert.Equal(t, "Go meetup", res.Event.Title)
		assert.Nil(t, res.Event.ImageURL)
		assert.Equal(t, LimitSummary{Max: 10, Current: 1, Remaining: 9}, res.Limits)
	})

	t.Run("past date is rejected", func(t *testing.T) {
		date := time.Now().Add(-time.Hour)
		_, err := d.events.CreateEvent(ctx, CreateEventInput{
			Title:     "Yesterday",
			Date:      &date,
			CreatedBy: user.ID,
		})
		assertKind(t, err, models.KindValidation)
		assert.Contains(t, models.AsAppError(err).Errors, "Event date must be in the future")
	})

	t.Run("collects every validation failure", func(t *testing.T) {
		_, err := d.events.CreateEvent(ctx, CreateEventInput{Title: "ab"})
		assertKind(t, err, models.KindValidation)
		assert.Len(t, models.AsAppError(err).Errors, 3)
	})

	t.Run("title length counts characters as given", func(t *testing.T) {
		date := time.Now().Add(time.Hour)

		res, err := d.events.CreateEvent(ctx, CreateEventInput{
			Title:     "  ab",
			Date:      &date,
			CreatedBy: user.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "  ab", res.Event.Title)

		res, err = d.events.CreateEvent(ctx, CreateEventInput{
			Title:     "Föö",
			Date:      &date,
			CreatedBy: user.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Föö", res.Event.Title)

		// two characters, three bytes
		_, err = d.events.CreateEvent(ctx, CreateEventInput{
			Title:     "hé",
			Date:      &date,
			CreatedBy: user.ID,
		})
		assertKind(t, err, models.KindValidation)
		assert.Contains(t, models.AsAppError(err).Errors, "Title must be at least 3 characters")
	})

	t.Run("title longer than 200 characters", func(t *testing.T) {
		date := time.Now().Add(time.Hour)
		_, err := d.events.CreateEvent(ctx, CreateEventInput{
			Title:     strings.Repeat("x", 201),
			Date:      &date,
			CreatedBy: user.ID,
		})
		assertKind(t, err, models.KindValidation)
	})

	t.Run("unknown creator", func(t *testing.T) {
		date := time.Now().Add(time.Hour)
		_, err := d.events.CreateEvent(ctx, CreateEventInput{
			Title:     "Orphan",
			Date:      &date,
			CreatedBy: 999,
		})
		assertKind(t, err, models.KindNotFound)
		assert.Equal(t, "User with ID 999 not found", err.Error())
	})
}

func TestEventService_GetEvent(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	event := d.mustCreateEvent(t, user.ID, "Conference")
	ctx := context.Background()

	_, err := d.events.GetEvent(ctx, "abc")
	assertKind(t, err, models.KindInvalidArgument)

	_, err = d.events.GetEvent(ctx, "4242")
	assertKind(t, err, models.KindNotFound)
	assert.Equal(t, "Event with ID 4242 not found", err.Error())

	got, err := d.events.GetEvent(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	require.NotNil(t, got.Creator)
	assert.Equal(t, user.ID, got.Creator.ID)
	assert.Equal(t, "Ada", got.Creator.Name)
	assert.Equal(t, "ada@example.com", got.Creator.Email)
	assert.True(t, got.Creator.CreatedAt.IsZero(), "creator is projected to id, name and email")
}

func TestEventService_ListEvents(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	d.mustCreateEvent(t, user.ID, "First")
	d.mustCreateEvent(t, user.ID, "Second")

	events, err := d.events.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		require.NotNil(t, e.Creator)
		assert.Equal(t, "Ada", e.Creator.Name)
	}
}

func TestEventService_UpdateEvent(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	ctx := context.Background()

	date := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	created, err := d.events.CreateEvent(ctx, CreateEventInput{
		Title:       "Original",
		Description: strPtr("keep me"),
		Date:        &date,
		CreatedBy:   user.ID,
	})
	require.NoError(t, err)
	id := created.Event.ID

	t.Run("title only keeps the rest", func(t *testing.T) {
		updated, err := d.events.UpdateEvent(ctx, UpdateEventInput{ID: id, Title: "Renamed"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)

		reloaded, err := d.events.GetEvent(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", reloaded.Title)
		require.NotNil(t, reloaded.Description)
		assert.Equal(t, "keep me", *reloaded.Description)
		assert.True(t, date.Equal(reloaded.Date))
		assert.Equal(t, user.ID, reloaded.CreatedBy)
	})

	t.Run("empty values fall back to stored ones", func(t *testing.T) {
		updated, err := d.events.UpdateEvent(ctx, UpdateEventInput{ID: id, Title: "", Description: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "keep me", *updated.Description)
	})

	t.Run("short title", func(t *testing.T) {
		_, err := d.events.UpdateEvent(ctx, UpdateEventInput{ID: id, Title: "ab"})
		assertKind(t, err, models.KindValidation)
	})

	t.Run("past date", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		_, err := d.events.UpdateEvent(ctx, UpdateEventInput{ID: id, Date: &past})
		assertKind(t, err, models.KindValidation)
	})

	t.Run("missing event", func(t *testing.T) {
		_, err := d.events.UpdateEvent(ctx, UpdateEventInput{ID: 999, Title: "Nope"})
		assertKind(t, err, models.KindNotFound)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	event := d.mustCreateEvent(t, user.ID, "Doomed")
	ctx := context.Background()

	msg, err := d.events.DeleteEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Event with ID 1 deleted successfully", msg)

	_, err = d.events.DeleteEvent(ctx, event.ID)
	assertKind(t, err, models.KindNotFound)
}

func TestEventService_AttachImage(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	event := d.mustCreateEvent(t, user.ID, "Gallery")
	ctx := context.Background()

	save := func(name string) *StoredImage {
		img, err := d.images.Save(ctx, UploadImageInput{
			Filename:    name,
			ContentType: "image/png",
			Content:     tinyPNG(t, 4, 4),
		})
		require.NoError(t, err)
		return img
	}

	t.Run("missing event removes the upload", func(t *testing.T) {
		img := save("orphan.png")
		_, err := d.events.AttachImage(ctx, 999, img)
		assertKind(t, err, models.KindNotFound)
		_, statErr := os.Stat(img.Path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("replacing an image keeps only the newest file", func(t *testing.T) {
		first := save("a.png")
		res, err := d.events.AttachImage(ctx, event.ID, first)
		require.NoError(t, err)
		assert.Equal(t, "Image uploaded successfully", res.Message)
		assert.Equal(t, first.PublicURL, res.ImageURL)

		second := save("b.png")
		_, err = d.events.AttachImage(ctx, event.ID, second)
		require.NoError(t, err)

		_, statErr := os.Stat(first.Path)
		assert.True(t, os.IsNotExist(statErr), "previous image should be deleted")
		_, statErr = os.Stat(second.Path)
		assert.NoError(t, statErr)

		entries, err := os.ReadDir(d.cfg.UploadDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, filepath.Base(second.Path), entries[0].Name())

		reloaded, err := d.events.GetEvent(ctx, "1")
		require.NoError(t, err)
		require.NotNil(t, reloaded.ImageURL)
		assert.Equal(t, second.PublicURL, *reloaded.ImageURL)
	})

	t.Run("previous file already gone is tolerated", func(t *testing.T) {
		current, err := d.events.GetEvent(ctx, "1")
		require.NoError(t, err)
		require.NotNil(t, current.ImageURL)
		require.NoError(t, d.images.Remove(*current.ImageURL))

		third := save("c.png")
		_, err = d.events.AttachImage(ctx, event.ID, third)
		assert.NoError(t, err)
	})
}

func TestEventService_AttachImage_PersistsURL(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	event := d.mustCreateEvent(t, user.ID, "Photo walk")
	ctx := context.Background()

	img, err := d.images.Save(ctx, UploadImageInput{
		Filename:    "walk.png",
		ContentType: "image/png",
		Content:     tinyPNG(t, 2, 2),
	})
	require.NoError(t, err)

	res, err := d.events.AttachImage(ctx, event.ID, img)
	require.NoError(t, err)
	assert.Equal(t, img.PublicURL, res.ImageURL)

	_, statErr := os.Stat(img.Path)
	assert.NoError(t, statErr, "attached upload stays on disk")

	var stored models.Event
	require.NoError(t, d.db.First(&stored, event.ID).Error)
	require.NotNil(t, stored.ImageURL)
	assert.Equal(t, img.PublicURL, *stored.ImageURL)
	assert.Equal(t, "Photo walk", stored.Title)
	assert.True(t, event.Date.Equal(stored.Date))
}

func TestEventService_AttachImage_EventAlreadyHappened(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	event := d.mustCreateEvent(t, user.ID, "Last week")
	ctx := context.Background()

	past := time.Now().Add(-7 * 24 * time.Hour)
	require.NoError(t, d.db.Model(&models.Event{}).Where("id = ?", event.ID).UpdateColumn("date", past).Error)

	img, err := d.images.Save(ctx, UploadImageInput{
		Filename:    "recap.png",
		ContentType: "image/png",
		Content:     tinyPNG(t, 2, 2),
	})
	require.NoError(t, err)

	_, err = d.events.AttachImage(ctx, event.ID, img)
	require.NoError(t, err)

	var stored models.Event
	require.NoError(t, d.db.First(&stored, event.ID).Error)
	require.NotNil(t, stored.ImageURL)
	assert.Equal(t, img.PublicURL, *stored.ImageURL)
}

func TestParseEventID(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"abc", "", "-1", "1.5"} {
		_, err := ParseEventID(raw)
		assertKind(t, err, models.KindInvalidArgument)
	}
	id, err := ParseEventID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestEventService_RecordsMetricsAndCleanupWarnings(t *testing.T) {
	d := newTestDeps(t, 10)
	user := d.mustCreateUser(t, "Ada", "ada@example.com")
	ctx := context.Background()

	var logs bytes.Buffer
	d.events.WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	createdBefore := testutil.ToFloat64(observability.EventsCreated)
	event := d.mustCreateEvent(t, user.ID, "Counted")
	assert.Equal(t, createdBefore+1, testutil.ToFloat64(observability.EventsCreated))

	// A non-empty directory cannot be removed, so replacing it fails the cleanup.
	stuck := filepath.Join(d.cfg.UploadDir, "stuck")
	require.NoError(t, os.MkdirAll(filepath.Join(stuck, "inner"), 0o755))
	require.NoError(t, d.db.Model(&models.Event{}).Where("id = ?", event.ID).
		UpdateColumn("image_url", PublicUploadPrefix+"/stuck").Error)

	img, err := d.images.Save(ctx, UploadImageInput{
		Filename:    "new.png",
		ContentType: "image/png",
		Content:     tinyPNG(t, 2, 2),
	})
	require.NoError(t, err)

	storedBefore := testutil.ToFloat64(observability.ImageUploads.WithLabelValues(observability.UploadStored))
	cleanupBefore := testutil.ToFloat64(observability.OrphanCleanupFailures)

	_, err = d.events.AttachImage(ctx, event.ID, img)
	require.NoError(t, err)

	assert.Equal(t, storedBefore+1, testutil.ToFloat64(observability.ImageUploads.WithLabelValues(observability.UploadStored)))
	assert.Equal(t, cleanupBefore+1, testutil.ToFloat64(observability.OrphanCleanupFailures))
	assert.Contains(t, logs.String(), "failed to remove previous event image")
}
