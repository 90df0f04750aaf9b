package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// BlobStore is the object storage used for entity images.
type BlobStore interface {
	// Upload stores reader under key and returns the public URL.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error)

	// Get opens the object stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	// List returns the objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]BlobObject, error)

	// SignedURL returns a time-limited download URL for key.
	SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)

	// GetURL returns the public URL for key.
	GetURL(key string) string
}

// BlobObject describes one stored object.
type BlobObject struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ImageKind is the entity an uploaded image belongs to.
type ImageKind string

const (
	ImageKindProduct  ImageKind = "products"
	ImageKindCategory ImageKind = "categories"
	ImageKindAdmin    ImageKind = "admins"
	ImageKindUser     ImageKind = "users"
)

func (k ImageKind) Valid() bool {
	switch k {
	case ImageKindProduct, ImageKindCategory, ImageKindAdmin, ImageKindUser:
		return true
	}
	return false
}

// ImageKey builds the "<kind>/<id>/<filename>" key of an entity image.
func ImageKey(kind ImageKind, id, filename string) string {
	return fmt.Sprintf("%s/%s/%s", kind, id, cleanFilename(filename))
}

// ThumbnailKey returns the key of the thumbnail stored next to key.
func ThumbnailKey(key string) string {
	dir, file := path.Split(key)
	return dir + thumbnailPrefix + file
}

func cleanFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return name
}

func normalizeKey(key string) string {
	return strings.TrimPrefix(key, "/")
}
