// File: internal/filestorage/service.go
package filestorage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Presigner is the part of the S3 presign client used here.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// UploadTarget is where a client PUTs an image, and the key to store as its ref.
type UploadTarget struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Service hands out presigned S3 upload URLs for vehicle images.
// The bytes never pass through this service.
type Service struct {
	presigner Presigner
	bucket    string
	expiry    time.Duration
	logger    *zap.Logger
}

// NewService builds the S3-backed service. With no S3_BUCKET_NAME it returns a
// disabled service whose uploads report ErrServiceUnavailable.
func NewService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	logger = logger.Named("FileStorage")
	if strings.TrimSpace(cfg.S3BucketName) == "" {
		logger.Warn("S3_BUCKET_NAME not set; image upload URLs are disabled")
		return &Service{logger: logger}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for S3: %w", err)
	}
	logger.Info("S3 image storage initialized", zap.String("bucket", cfg.S3BucketName), zap.String("region", cfg.S3Region))
	return NewServiceWithPresigner(s3.NewPresignClient(s3.NewFromConfig(awsCfg)), cfg.S3BucketName, cfg.S3PresignExpiry, logger), nil
}

func NewServiceWithPresigner(p Presigner, bucket string, expiry time.Duration, logger *zap.Logger) *Service {
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	return &Service{presigner: p, bucket: bucket, expiry: expiry, logger: logger}
}

// PresignImageUpload returns a short-lived PUT URL under vehicles/<ownerID>/.
func (s *Service) PresignImageUpload(ctx context.Context, ownerID uuid.UUID, fileName, contentType string) (*UploadTarget, error) {
	if s.presigner == nil {
		return nil, common.ErrServiceUnavailable.WithDetails("Image uploads are not configured.")
	}
	key, err := ObjectKey(ownerID, fileName, contentType)
	if err != nil {
		return nil, err
	}

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		s.logger.Error("Failed to presign S3 upload", zap.String("key", key), zap.Error(err))
		return nil, common.ErrUpstreamUnavailable.WithDetails("Could not create an upload URL.")
	}
	return &UploadTarget{URL: req.URL, Key: key, ExpiresAt: time.Now().UTC().Add(s.expiry)}, nil
}

// ObjectKey derives a unique, path-safe key from the client's file name.
func ObjectKey(ownerID uuid.UUID, fileName, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", common.NewFieldValidationError("contentType", "Only JPEG, PNG, WebP and GIF images are accepted.")
	}
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	name := slug.Make(base)
	if name == "" || name == "." {
		name = "image"
	}
	if len(name) > 60 {
		name = name[:60]
	}
	return fmt.Sprintf("vehicles/%s/%s-%s%s", ownerID, uuid.New(), name, ext), nil
}
