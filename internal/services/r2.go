package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	appconfig "ecommerce-platform/internal/config"
	"ecommerce-platform/internal/models"
)

// R2Service implements BlobStore for Cloudflare R2 (or any S3-compatible API).
type R2Service struct {
	client   *s3.Client
	presign  *s3.PresignClient
	uploader *manager.Uploader
	config   appconfig.R2Config
	logger   logrus.FieldLogger
}

// NewR2Service creates a new R2 storage service
func NewR2Service(cfg appconfig.R2Config, logger logrus.FieldLogger) (*R2Service, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("R2 credentials not configured")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		} else {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
		}
		o.UsePathStyle = true
	})

	return &R2Service{
		client:   client,
		presign:  s3.NewPresignClient(client),
		uploader: manager.NewUploader(client),
		config:   cfg,
		logger:   logger.WithField("storage", "r2"),
	}, nil
}

// Upload uploads a file to R2 and returns the public URL
func (r *R2Service) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	key = normalizeKey(key)

	_, err := r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.config.BucketName),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", &models.BlobStoreError{Op: "upload", Key: key, Err: err}
	}

	r.logger.WithFields(logrus.Fields{"key": key, "size": size}).Debug("Uploaded object")
	return r.GetURL(key), nil
}

func (r *R2Service) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	key = normalizeKey(key)

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, &models.BlobStoreError{Op: "get", Key: key, Err: models.ErrNotFound}
		}
		return nil, &models.BlobStoreError{Op: "get", Key: key, Err: err}
	}
	return out.Body, nil
}

// Delete removes a file from R2
func (r *R2Service) Delete(ctx context.Context, key string) error {
	key = normalizeKey(key)

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return &models.BlobStoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (r *R2Service) List(ctx context.Context, prefix string) ([]BlobObject, error) {
	prefix = normalizeKey(prefix)

	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.config.BucketName),
		Prefix: aws.String(prefix),
	})

	var objects []BlobObject
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &models.BlobStoreError{Op: "list", Key: prefix, Err: err}
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			objects = append(objects, BlobObject{
				Key:          key,
				URL:          r.GetURL(key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

func (r *R2Service) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	key = normalizeKey(key)

	result, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.config.BucketName),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})
	if err != nil {
		return "", &models.BlobStoreError{Op: "presign", Key: key, Err: err}
	}
	return result.URL, nil
}

// GetURL returns the public URL for a file
func (r *R2Service) GetURL(key string) string {
	key = normalizeKey(key)

	if r.config.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(r.config.PublicURL, "/"), key)
	}
	return fmt.Sprintf("https://pub-%s.r2.dev/%s", r.config.AccountID, key)
}

// CreateBucket creates the R2 bucket if it doesn't exist
func (r *R2Service) CreateBucket(ctx context.Context) error {
	_, err := r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.config.BucketName),
	})
	if err != nil {
		var bucketExists *types.BucketAlreadyExists
		var bucketOwnedByYou *types.BucketAlreadyOwnedByYou
		if errors.As(err, &bucketExists) || errors.As(err, &bucketOwnedByYou) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// SetBucketCORS lets browsers on origins fetch images and signed URLs.
func (r *R2Service) SetBucketCORS(ctx context.Context, origins []string) error {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	_, err := r.client.PutBucketCors(ctx, &s3.PutBucketCorsInput{
		Bucket: aws.String(r.config.BucketName),
		CORSConfiguration: &types.CORSConfiguration{
			CORSRules: []types.CORSRule{
				{
					AllowedHeaders: []string{"*"},
					AllowedMethods: []string{"GET", "HEAD"},
					AllowedOrigins: origins,
					ExposeHeaders:  []string{"ETag"},
					MaxAgeSeconds:  aws.Int32(3000),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set bucket CORS: %w", err)
	}
	return nil
}

// HealthCheck verifies that the R2 service is accessible
func (r *R2Service) HealthCheck(ctx context.Context) error {
	_, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(r.config.BucketName),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("R2 health check failed: %w", err)
	}
	return nil
}
