package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"eventhub/internal/config"
	"eventhub/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultImageUploadDir       = "uploads"
	DefaultImageMaxUploadSizeMB = 2
	// PublicUploadPrefix is the URL path under which UploadDir is served.
	PublicUploadPrefix = "/uploads"
)

type UploadImageInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// StoredImage is a file written to the upload directory.
type StoredImage struct {
	Filename  string
	Path      string
	PublicURL string
	MimeType  string
	SizeBytes int64
}

// ImageStore validates uploaded images and keeps them on local disk.
type ImageStore struct {
	uploadDir          string
	maxUploadSizeBytes int64
	now                func() time.Time
}

func NewImageStore(cfg *config.Config) *ImageStore {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageStore{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		now:                time.Now,
	}
}

// Dir returns the directory uploads are written to.
func (s *ImageStore) Dir() string {
	return s.uploadDir
}

// MaxUploadSizeBytes returns the largest accepted upload.
func (s *ImageStore) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeBytes
}

// TooLargeError is the error reported for uploads above the size cap.
func (s *ImageStore) TooLargeError() *models.AppError {
	return models.NewInvalidArgumentError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
}

func (s *ImageStore) Save(_ context.Context, in UploadImageInput) (*StoredImage, error) {
	if len(in.Content) == 0 {
		return nil, models.NewInvalidArgumentError("No image file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, s.TooLargeError()
	}

	detectedType := normalizeContentType(http.DetectContentType(in.Content))
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewInvalidArgumentError("Invalid file format. Only .jpg and .png are allowed")
	}
	if provided := normalizeContentType(in.ContentType); provided != "" && provided != "application/octet-stream" {
		if !isAllowedImageMIME(provided) {
			return nil, models.NewInvalidArgumentError("Invalid file format. Only .jpg and .png are allowed")
		}
		if !isMatchingContentType(provided, detectedType) {
			return nil, models.NewInvalidArgumentError("Image content type mismatch")
		}
	}

	filename := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), extensionFor(in.Filename, detectedType))
	fullPath := filepath.Join(s.uploadDir, filename)
	if err := writeBytesToFile(fullPath, in.Content); err != nil {
		return nil, models.NewInternalError(err)
	}

	return &StoredImage{
		Filename:  filename,
		Path:      fullPath,
		PublicURL: path.Join(PublicUploadPrefix, filename),
		MimeType:  detectedType,
		SizeBytes: int64(len(in.Content)),
	}, nil
}

// Remove deletes the file behind a public /uploads URL. A missing file is not an error.
func (s *ImageStore) Remove(publicURL string) error {
	name := filepath.Base(strings.TrimPrefix(publicURL, PublicUploadPrefix+"/"))
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("invalid upload url %q", publicURL)
	}
	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func extensionFor(filename, detectedType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		if detectedType == "image/jpeg" {
			return ext
		}
	case ".png":
		if detectedType == "image/png" {
			return ext
		}
	}
	if detectedType == "image/png" {
		return ".png"
	}
	return ".jpg"
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
