package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ecommerce-platform/internal/config"
)

// StorageFactory creates storage services with proper fallback configuration
type StorageFactory struct {
	config *config.Config
	logger logrus.FieldLogger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger logrus.FieldLogger) *StorageFactory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &StorageFactory{config: cfg, logger: logger}
}

// CreateBlobStore returns R2 backed by local storage when R2 is configured and
// reachable, otherwise local storage alone.
func (f *StorageFactory) CreateBlobStore(ctx context.Context) BlobStore {
	fallback := NewFallbackStorageService(f.config.Uploads.Dir, f.config.Uploads.BaseURL, f.logger)

	if !f.config.R2Configured() {
		f.logger.Info("R2 not configured, using local storage")
		return fallback
	}

	r2Service, err := NewR2Service(f.config.R2, f.logger)
	if err != nil {
		f.logger.WithError(err).Warn("R2 service unavailable, using local storage")
		return fallback
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := r2Service.HealthCheck(checkCtx); err != nil {
		f.logger.WithError(err).Warn("R2 health check failed, using local storage")
		return fallback
	}

	f.logger.WithField("bucket", f.config.R2.BucketName).Info("R2 storage initialized")
	return NewStorageServiceWithFallback(r2Service, fallback, f.logger)
}

// SetupR2Bucket creates the bucket and its CORS rules.
func (f *StorageFactory) SetupR2Bucket(ctx context.Context) error {
	if err := f.ValidateR2Configuration(); err != nil {
		return err
	}

	r2Service, err := NewR2Service(f.config.R2, f.logger)
	if err != nil {
		return fmt.Errorf("failed to create R2 service: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := r2Service.CreateBucket(ctx); err != nil {
		return fmt.Errorf("failed to create R2 bucket: %w", err)
	}

	var origins []string
	if f.config.Server.AllowedOrigin != "" {
		origins = strings.Split(f.config.Server.AllowedOrigin, ",")
	}
	if err := r2Service.SetBucketCORS(ctx, origins); err != nil {
		return fmt.Errorf("failed to set R2 bucket CORS: %w", err)
	}
	return nil
}

// ValidateR2Configuration validates the R2 configuration
func (f *StorageFactory) ValidateR2Configuration() error {
	cfg := f.config.R2

	if cfg.AccountID == "" && cfg.Endpoint == "" {
		return &config.ConfigurationError{Key: "R2_ACCOUNT_ID", Reason: "is required"}
	}
	if cfg.AccessKeyID == "" {
		return &config.ConfigurationError{Key: "R2_ACCESS_KEY_ID", Reason: "is required"}
	}
	if cfg.SecretAccessKey == "" {
		return &config.ConfigurationError{Key: "R2_SECRET_ACCESS_KEY", Reason: "is required"}
	}
	if cfg.BucketName == "" {
		return &config.ConfigurationError{Key: "R2_BUCKET_NAME", Reason: "is required"}
	}
	return nil
}
