package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"socialapi/config"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	name := objectName("64b7f0c2a1b2c3d4e5f60718", "image/png", now)

	pattern := regexp.MustCompile(`^media/64b7f0c2a1b2c3d4e5f60718/2024/03/[0-9a-f-]{36}\.png$`)
	assert.Regexp(t, pattern, name)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", extension("image/jpeg"))
	assert.Equal(t, ".mp4", extension("video/mp4"))
	assert.Equal(t, "", extension("application/x-unknown-thing"))
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/media", publicBaseURL(config.MinIO{Endpoint: "localhost:9000", BucketName: "media"}))
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(config.MinIO{PublicURL: "https://cdn.example.com/"}))
}

func TestNewWithoutBackend(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
