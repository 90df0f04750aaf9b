package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ecommerce-platform/internal/models"
)

// FallbackStorageService stores blobs on the local filesystem. It serves
// development setups and takes over when R2 is unavailable.
type FallbackStorageService struct {
	basePath string
	baseURL  string
	logger   logrus.FieldLogger
}

// NewFallbackStorageService creates a new fallback storage service
func NewFallbackStorageService(basePath, baseURL string, logger logrus.FieldLogger) *FallbackStorageService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("storage", "local")

	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.WithError(err).WithField("path", basePath).Warn("Failed to create storage directory")
	}

	return &FallbackStorageService{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

// resolve maps key to a path inside basePath, rejecting traversal.
func (f *FallbackStorageService) resolve(key string) (string, error) {
	key = normalizeKey(key)
	fullPath := filepath.Join(f.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(f.basePath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return fullPath, nil
}

// Upload saves a file to local storage
func (f *FallbackStorageService) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	key = normalizeKey(key)
	fullPath, err := f.resolve(key)
	if err != nil {
		return "", &models.BlobStoreError{Op: "upload", Key: key, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", &models.BlobStoreError{Op: "upload", Key: key, Err: err}
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", &models.BlobStoreError{Op: "upload", Key: key, Err: err}
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return "", &models.BlobStoreError{Op: "upload", Key: key, Err: err}
	}
	if size >= 0 && written != size {
		return "", &models.BlobStoreError{
			Op: "upload", Key: key,
			Err: fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", size, written),
		}
	}

	f.logger.WithFields(logrus.Fields{"key": key, "size": written}).Debug("Stored object")
	return f.GetURL(key), nil
}

func (f *FallbackStorageService) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	key = normalizeKey(key)
	fullPath, err := f.resolve(key)
	if err != nil {
		return nil, &models.BlobStoreError{Op: "get", Key: key, Err: err}
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.BlobStoreError{Op: "get", Key: key, Err: models.ErrNotFound}
		}
		return nil, &models.BlobStoreError{Op: "get", Key: key, Err: err}
	}
	return file, nil
}

// Delete removes a file from local storage
func (f *FallbackStorageService) Delete(ctx context.Context, key string) error {
	key = normalizeKey(key)
	fullPath, err := f.resolve(key)
	if err != nil {
		return &models.BlobStoreError{Op: "delete", Key: key, Err: err}
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &models.BlobStoreError{Op: "delete", Key: key, Err: err}
	}

	f.cleanupEmptyDirs(filepath.Dir(fullPath))
	return nil
}

func (f *FallbackStorageService) List(ctx context.Context, prefix string) ([]BlobObject, error) {
	prefix = normalizeKey(prefix)

	var objects []BlobObject
	err := filepath.WalkDir(f.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, BlobObject{
			Key:          key,
			URL:          f.GetURL(key),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, &models.BlobStoreError{Op: "list", Key: prefix, Err: err}
	}
	return objects, nil
}

// SignedURL returns the public URL: local files are served without signing.
func (f *FallbackStorageService) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return f.GetURL(key), nil
}

// GetURL returns the public URL for a file
func (f *FallbackStorageService) GetURL(key string) string {
	return fmt.Sprintf("%s/%s", f.baseURL, normalizeKey(key))
}

// cleanupEmptyDirs removes empty directories up to the base path
func (f *FallbackStorageService) cleanupEmptyDirs(dir string) {
	if filepath.Clean(dir) == filepath.Clean(f.basePath) || dir == "." || dir == "/" {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}

	if err := os.Remove(dir); err == nil {
		f.cleanupEmptyDirs(filepath.Dir(dir))
	}
}

// StorageServiceWithFallback writes to primary and falls back to the local
// store when primary fails.
type StorageServiceWithFallback struct {
	primary  BlobStore
	fallback BlobStore
	logger   logrus.FieldLogger
}

// NewStorageServiceWithFallback creates a storage service with fallback capability
func NewStorageServiceWithFallback(primary, fallback BlobStore, logger logrus.FieldLogger) *StorageServiceWithFallback {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StorageServiceWithFallback{primary: primary, fallback: fallback, logger: logger}
}

// Upload tries primary storage first, falls back to fallback storage on error
func (s *StorageServiceWithFallback) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	url, err := s.primary.Upload(ctx, key, reader, contentType, size)
	if err == nil {
		return url, nil
	}

	seeker, ok := reader.(io.Seeker)
	if !ok {
		return "", err
	}
	if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
		return "", err
	}

	s.logger.WithError(err).WithField("key", key).Warn("Primary storage failed, using fallback")
	return s.fallback.Upload(ctx, key, reader, contentType, size)
}

func (s *StorageServiceWithFallback) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	body, err := s.primary.Get(ctx, key)
	if err == nil {
		return body, nil
	}
	return s.fallback.Get(ctx, key)
}

// Delete tries to delete from both storages
func (s *StorageServiceWithFallback) Delete(ctx context.Context, key string) error {
	primaryErr := s.primary.Delete(ctx, key)
	fallbackErr := s.fallback.Delete(ctx, key)

	if primaryErr != nil && fallbackErr != nil {
		return errors.Join(primaryErr, fallbackErr)
	}
	return nil
}

// List merges both stores; primary wins on duplicate keys.
func (s *StorageServiceWithFallback) List(ctx context.Context, prefix string) ([]BlobObject, error) {
	primary, err := s.primary.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	local, err := s.fallback.List(ctx, prefix)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list fallback storage")
		return primary, nil
	}

	seen := make(map[string]bool, len(primary))
	for _, obj := range primary {
		seen[obj.Key] = true
	}
	for _, obj := range local {
		if !seen[obj.Key] {
			primary = append(primary, obj)
		}
	}
	return primary, nil
}

func (s *StorageServiceWithFallback) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return s.primary.SignedURL(ctx, key, expiration)
}

// GetURL returns URL from primary storage
func (s *StorageServiceWithFallback) GetURL(key string) string {
	return s.primary.GetURL(key)
}
