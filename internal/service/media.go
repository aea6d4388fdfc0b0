package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"inkwell/internal/config"
	"inkwell/internal/model"
)

const presignExpiry = 15 * time.Minute

// MediaService hands out presigned upload URLs for post covers on Cloudflare
// R2. Image bytes go straight from the client to the bucket.
type MediaService struct {
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewMediaService constructs an S3-compatible presign client for R2.
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &MediaService{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// PresignCover validates type and size, then returns a one-shot upload URL
// and the public URL the client stores as the post's cover reference.
func (s *MediaService) PresignCover(ctx context.Context, req model.PresignCoverRequest) (*model.PresignCoverResponse, error) {
	ext, ok := model.ImageExtension(req.ContentType)
	if !ok {
		return nil, model.ErrInvalidImageType
	}
	if req.FileSize <= 0 || req.FileSize > model.MaxCoverSizeBytes {
		return nil, model.ErrFileTooLarge
	}

	key := fmt.Sprintf("%s/%s%s", model.CoverFolder, uuid.NewString(), ext)

	presigned, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(req.ContentType),
		ContentLength: aws.Int64(req.FileSize),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put object: %w", err)
	}

	return &model.PresignCoverResponse{
		UploadURL: presigned.URL,
		PublicURL: fmt.Sprintf("%s/%s", s.publicURL, key),
		Key:       key,
	}, nil
}
