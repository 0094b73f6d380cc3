package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"socialapi/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cfg config.Cloudinary) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration: %w", err)
	}
	return &Cloudinary{cld: cld, folder: cfg.Folder}, nil
}

// Upload stores the file under <folder>/media/<owner>/... The returned key
// is "<resource type>/<public id>" because deletes need both.
func (c *Cloudinary) Upload(ctx context.Context, owner string, file io.Reader, size int64, contentType string) (Object, error) {
	name := objectName(owner, contentType, time.Now())
	publicID := strings.TrimSuffix(path.Base(name), path.Ext(name))

	result, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       path.Join(c.folder, path.Dir(name)),
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return Object{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return Object{}, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}

	return Object{
		Key: result.ResourceType + "/" + result.PublicID,
		URL: result.SecureURL,
	}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	resourceType, publicID, ok := strings.Cut(key, "/")
	if !ok {
		resourceType, publicID = "image", key
	}

	result, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", result.Error.Message)
	}
	return nil
}
