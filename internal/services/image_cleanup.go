package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"ecommerce-platform/internal/repositories"

	"github.com/sirupsen/logrus"
)

// imageReferenceQuery lists every image URL stored on a catalog or account row.
const imageReferenceQuery = `
	SELECT image_url FROM products WHERE image_url <> ''
	UNION SELECT image_url FROM categories WHERE image_url <> ''
	UNION SELECT image_url FROM admins WHERE image_url <> ''
	UNION SELECT image_url FROM users WHERE image_url <> ''`

// ImageCleanupService handles cleanup of orphaned images in blob storage
type ImageCleanupService struct {
	storage BlobStore
	db      repositories.DBTX
	logger  logrus.FieldLogger
}

// NewImageCleanupService creates a new image cleanup service
func NewImageCleanupService(storage BlobStore, db repositories.DBTX, logger logrus.FieldLogger) *ImageCleanupService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageCleanupService{storage: storage, db: db, logger: logger}
}

// OrphanedImage represents an image that exists in storage but not in database
type OrphanedImage struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ImageCleanupResult represents the result of an image cleanup operation
type ImageCleanupResult struct {
	TotalImagesInStorage int             `json:"total_images_in_storage"`
	TotalImagesInDB      int             `json:"total_images_in_db"`
	OrphanedImages       []OrphanedImage `json:"orphaned_images"`
	DryRun               bool            `json:"dry_run"`
	CleanedUp            []string        `json:"cleaned_up"`
	Errors               []string        `json:"errors"`
}

// GetSummary returns a summary of the cleanup result
func (r *ImageCleanupResult) GetSummary() string {
	if r.DryRun {
		return fmt.Sprintf("Dry run completed. Found %d orphaned images out of %d total images in storage.",
			len(r.OrphanedImages), r.TotalImagesInStorage)
	}
	return fmt.Sprintf("Cleanup completed. Cleaned up %d images, %d errors occurred.",
		len(r.CleanedUp), len(r.Errors))
}

// CleanupOrphanedImages removes stored images no product, category, admin or
// user points at. Thumbnails live and die with their original.
func (s *ImageCleanupService) CleanupOrphanedImages(ctx context.Context, dryRun bool) (*ImageCleanupResult, error) {
	s.logger.WithField("dry_run", dryRun).Info("Starting image cleanup")

	referenced, err := s.referencedKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get image references from database: %w", err)
	}

	result := &ImageCleanupResult{
		TotalImagesInDB: len(referenced),
		DryRun:          dryRun,
		CleanedUp:       []string{},
		Errors:          []string{},
	}

	for _, kind := range []ImageKind{ImageKindProduct, ImageKindCategory, ImageKindAdmin, ImageKindUser} {
		objects, err := s.storage.List(ctx, string(kind)+"/")
		if err != nil {
			return nil, fmt.Errorf("failed to list %s images: %w", kind, err)
		}
		result.TotalImagesInStorage += len(objects)
		result.OrphanedImages = append(result.OrphanedImages, findOrphanedImages(referenced, objects)...)
	}

	if !dryRun {
		for _, orphan := range result.OrphanedImages {
			if err := s.storage.Delete(ctx, orphan.Key); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", orphan.Key, err))
				s.logger.WithError(err).WithField("key", orphan.Key).Warn("Failed to delete orphaned image")
				continue
			}
			result.CleanedUp = append(result.CleanedUp, orphan.Key)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"in_storage": result.TotalImagesInStorage,
		"orphaned":   len(result.OrphanedImages),
		"cleaned_up": len(result.CleanedUp),
		"errors":     len(result.Errors),
	}).Info("Image cleanup completed")

	return result, nil
}

// CleanupEntityImages removes every image stored for one entity.
func (s *ImageCleanupService) CleanupEntityImages(ctx context.Context, kind ImageKind, id string) error {
	if !kind.Valid() || strings.TrimSpace(id) == "" {
		return nil
	}
	objects, err := s.storage.List(ctx, string(kind)+"/"+id+"/")
	if err != nil {
		return fmt.Errorf("failed to list %s images: %w", kind, err)
	}
	for _, obj := range objects {
		if err := s.storage.Delete(ctx, obj.Key); err != nil {
			s.logger.WithError(err).WithField("key", obj.Key).Warn("Failed to delete entity image")
		}
	}
	return nil
}

// referencedKeys maps stored image URLs back to blob keys.
func (s *ImageCleanupService) referencedKeys(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, imageReferenceQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		if key := keyFromURL(url); key != "" {
			keys[key] = true
		}
	}
	return keys, rows.Err()
}

// keyFromURL extracts "<kind>/<id>/<file>" from a public or local URL.
func keyFromURL(url string) string {
	url = strings.SplitN(url, "?", 2)[0]
	for _, kind := range []ImageKind{ImageKindProduct, ImageKindCategory, ImageKindAdmin, ImageKindUser} {
		if i := strings.Index(url, "/"+string(kind)+"/"); i >= 0 {
			return url[i+1:]
		}
		if strings.HasPrefix(url, string(kind)+"/") {
			return url
		}
	}
	return ""
}

func findOrphanedImages(referenced map[string]bool, objects []BlobObject) []OrphanedImage {
	var orphaned []OrphanedImage
	for _, obj := range objects {
		key := obj.Key
		if base := path.Base(key); strings.HasPrefix(base, thumbnailPrefix) {
			key = path.Join(path.Dir(key), strings.TrimPrefix(base, thumbnailPrefix))
		}
		if referenced[key] {
			continue
		}
		orphaned = append(orphaned, OrphanedImage{
			Key:          obj.Key,
			URL:          obj.URL,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return orphaned
}
