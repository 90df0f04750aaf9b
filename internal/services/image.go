package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"ecommerce-platform/internal/models"
)

const (
	// MaxImageDimension bounds the longest side of a stored original.
	MaxImageDimension = 1600
	// ThumbnailDimension bounds the longest side of the thumbnail variant.
	ThumbnailDimension = 300
	// MaxImageSize is the largest accepted upload in bytes.
	MaxImageSize = 10 << 20

	thumbnailPrefix = "thumb_"
	jpegQuality     = 85
)

// ImageMetadata describes one stored image.
type ImageMetadata struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ImageUploadResult is the original and its thumbnail.
type ImageUploadResult struct {
	Original  ImageMetadata `json:"original"`
	Thumbnail ImageMetadata `json:"thumbnail"`
}

// ImageService normalises entity images and stores them in a BlobStore.
type ImageService struct {
	storage BlobStore
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewImageService creates a new image service
func NewImageService(storage BlobStore, logger logrus.FieldLogger) *ImageService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageService{storage: storage, logger: logger, now: time.Now}
}

// UploadEntityImage decodes the upload, caps it at MaxImageDimension and
// stores it with a thumbnail under "<kind>/<id>/".
func (s *ImageService) UploadEntityImage(ctx context.Context, kind ImageKind, id, filename string, reader io.Reader) (*ImageUploadResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown image kind %q", models.ErrInvalidInput, kind)
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: image owner id is required", models.ErrInvalidInput)
	}

	data, err := io.ReadAll(io.LimitReader(reader, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", models.ErrInvalidInput, MaxImageSize)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", models.ErrInvalidInput, err)
	}
	if !isValidImageFormat(format) {
		return nil, fmt.Errorf("%w: unsupported image format: %s", models.ErrInvalidInput, format)
	}

	key := ImageKey(kind, id, withExtension(filename, format))

	bounds := img.Bounds()
	if bounds.Dx() > MaxImageDimension || bounds.Dy() > MaxImageDimension {
		img = imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos)
	}

	original, err := s.store(ctx, key, img, format)
	if err != nil {
		return nil, fmt.Errorf("failed to upload original image: %w", err)
	}

	thumb := imaging.Fit(img, ThumbnailDimension, ThumbnailDimension, imaging.Lanczos)
	thumbnail, err := s.store(ctx, ThumbnailKey(key), thumb, format)
	if err != nil {
		return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"key":    key,
		"width":  original.Width,
		"height": original.Height,
	}).Info("Image uploaded")

	return &ImageUploadResult{Original: *original, Thumbnail: *thumbnail}, nil
}

func (s *ImageService) store(ctx context.Context, key string, img image.Image, format string) (*ImageMetadata, error) {
	data, err := encodeImage(img, format)
	if err != nil {
		return nil, err
	}

	contentType := getContentType(format)
	url, err := s.storage.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &ImageMetadata{
		Key:         key,
		URL:         url,
		Size:        int64(len(data)),
		ContentType: contentType,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		UploadedAt:  s.now(),
	}, nil
}

// DeleteImage removes key and its thumbnail.
func (s *ImageService) DeleteImage(ctx context.Context, key string) error {
	key = normalizeKey(key)
	if err := s.storage.Delete(ctx, key); err != nil {
		return err
	}
	if !strings.HasPrefix(path.Base(key), thumbnailPrefix) {
		if err := s.storage.Delete(ctx, ThumbnailKey(key)); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Failed to delete thumbnail")
		}
	}
	return nil
}

// ListImages lists the images of one kind, optionally narrowed to one entity.
func (s *ImageService) ListImages(ctx context.Context, kind ImageKind, id string) ([]BlobObject, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown image kind %q", models.ErrInvalidInput, kind)
	}
	prefix := string(kind) + "/"
	if id != "" {
		prefix += id + "/"
	}
	return s.storage.List(ctx, prefix)
}

// SignedURL returns a time-limited download URL for key.
func (s *ImageService) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: key is required", models.ErrInvalidInput)
	}
	return s.storage.SignedURL(ctx, key, expiration)
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "png":
		encoder := &png.Encoder{CompressionLevel: png.BestCompression}
		if err := encoder.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format for processing: %s", format)
	}
	return buf.Bytes(), nil
}

// withExtension makes the stored filename's extension match the encoded format.
func withExtension(filename, format string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	ext := ".png"
	if format == "jpeg" {
		ext = ".jpg"
	}
	return base + ext
}

// isValidImageFormat checks if the image format is supported
func isValidImageFormat(format string) bool {
	return format == "jpeg" || format == "png"
}

// getContentType returns the MIME type for the image format
func getContentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
