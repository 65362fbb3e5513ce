package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

func TestImageStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(&config.Config{UploadDir: dir, ImageMaxUploadSizeMB: 1})
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	t.Run("png", func(t *testing.T) {
		img, err := store.Save(ctx, UploadImageInput{Filename: "Photo.PNG", ContentType: "image/png", Content: tinyPNG(t, 2, 2)})
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^1700000000000-[0-9a-f-]{36}\.png$`), img.Filename)
		assert.Equal(t, "/uploads/"+img.Filename, img.PublicURL)
		assert.Equal(t, filepath.Join(dir, img.Filename), img.Path)
		assert.Equal(t, "image/png", img.MimeType)
		_, err = os.Stat(img.Path)
		assert.NoError(t, err)
	})

	t.Run("jpeg keeps its extension", func(t *testing.T) {
		img, err := store.Save(ctx, UploadImageInput{Filename: "cat.jpeg", ContentType: "image/jpeg", Content: tinyJPEG(t)})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(img.Filename, ".jpeg"))
	})

	t.Run("extension follows detected type", func(t *testing.T) {
		img, err := store.Save(ctx, UploadImageInput{Filename: "noext", Content: tinyJPEG(t)})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(img.Filename, ".jpg"))
	})
}

func TestImageStore_SaveRejects(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(&config.Config{UploadDir: dir, ImageMaxUploadSizeMB: 1})
	ctx := context.Background()

	tests := []struct {
		name string
		in   UploadImageInput
	}{
		{name: "empty", in: UploadImageInput{Filename: "a.png"}},
		{name: "too large", in: UploadImageInput{Filename: "a.png", Content: append(tinyPNG(t, 2, 2), make([]byte, 1024*1024)...)}},
		{name: "gif content", in: UploadImageInput{Filename: "a.gif", Content: []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")}},
		{name: "text content", in: UploadImageInput{Filename: "a.png", ContentType: "image/png", Content: []byte("hello world")}},
		{name: "declared type mismatch", in: UploadImageInput{Filename: "a.png", ContentType: "image/png", Content: tinyJPEG(t)}},
		{name: "declared type not allowed", in: UploadImageInput{Filename: "a.webp", ContentType: "image/webp", Content: tinyPNG(t, 2, 2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(ctx, tt.in)
			assertKind(t, err, models.KindInvalidArgument)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not touch the disk")
}

func TestImageStore_Remove(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(&config.Config{UploadDir: dir})

	img, err := store.Save(context.Background(), UploadImageInput{Filename: "a.png", Content: tinyPNG(t, 2, 2)})
	require.NoError(t, err)

	require.NoError(t, store.Remove(img.PublicURL))
	_, statErr := os.Stat(img.Path)
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, store.Remove(img.PublicURL), "missing file is not an error")

	outside := filepath.Join(filepath.Dir(dir), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))
	t.Cleanup(func() { _ = os.Remove(outside) })
	require.NoError(t, store.Remove("/uploads/../keep.txt"))
	_, statErr = os.Stat(outside)
	assert.NoError(t, statErr, "traversal outside the upload dir is ignored")
}

func TestNewImageStore_Defaults(t *testing.T) {
	store := NewImageStore(nil)
	assert.Equal(t, DefaultImageUploadDir, store.Dir())
	assert.Equal(t, int64(2*1024*1024), store.MaxUploadSizeBytes())
}
