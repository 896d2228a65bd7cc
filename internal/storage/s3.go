package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/time/rate"

	"github.com/vidstream/backend/internal/config"
	"github.com/vidstream/backend/internal/models"
)

// S3Store implements MediaStore backed by an S3-compatible service.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	pacer    *rate.Limiter
	bucket   string
	baseURL  string
	prefix   string
}

// NewS3Store configures a client and uploader targeting the provided object
// store.
func NewS3Store(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		if endpoint != "" {
			baseURL = strings.TrimSuffix(endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Store{
		client:   client,
		uploader: uploader,
		pacer:    rate.NewLimiter(limit, max(cfg.Burst, 1)),
		bucket:   cfg.Bucket,
		baseURL:  baseURL,
		prefix:   "media",
	}, nil
}

// Store uploads content under a fresh key and returns its public location.
func (s *S3Store) Store(ctx context.Context, name, contentType string, content io.Reader) (models.MediaAsset, error) {
	if content == nil {
		return models.MediaAsset{}, errors.New("s3 storage: empty upload")
	}
	if err := s.pacer.Wait(ctx); err != nil {
		return models.MediaAsset{}, fmt.Errorf("s3 storage: %w", err)
	}

	key := objectKey(s.prefix, name)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   manager.ReadSeekCloser(content),
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return models.MediaAsset{}, fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	return models.MediaAsset{URL: s.baseURL + "/" + key, StorageID: key}, nil
}

// Remove deletes the object identified by storageID.
func (s *S3Store) Remove(ctx context.Context, storageID string) error {
	key := strings.TrimLeft(storageID, "/")
	if key == "" {
		return errors.New("s3 storage: empty key")
	}
	if err := s.pacer.Wait(ctx); err != nil {
		return fmt.Errorf("s3 storage: %w", err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}
	return nil
}
