package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"socialapi/config"

	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("media storage is not configured")

// Object is a stored blob. Key is what Delete expects back.
type Object struct {
	Key string
	URL string
}

type Uploader interface {
	Upload(ctx context.Context, owner string, file io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// New picks Cloudinary when CLOUDINARY_URL is set, otherwise MinIO when an
// endpoint is set. It returns ErrNotConfigured when neither is.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch {
	case cfg.Cloudinary.URL != "":
		return NewCloudinary(cfg.Cloudinary)
	case cfg.MinIO.Endpoint != "":
		return NewMinIO(ctx, cfg.MinIO)
	default:
		return nil, ErrNotConfigured
	}
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// objectName lays blobs out as media/<owner>/<yyyy>/<mm>/<uuid><ext>.
func objectName(owner, contentType string, now time.Time) string {
	return fmt.Sprintf("media/%s/%d/%02d/%s%s",
		owner,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		extension(contentType))
}
