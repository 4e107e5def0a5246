package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/alumnet/alumni-backend/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// avatarURLExpiry bounds how long a resolved avatar link stays
// fetchable. Pending lists are short-lived admin views.
const avatarURLExpiry = 15 * time.Minute

// S3Service resolves stored avatar references into presigned GET
// URLs. It satisfies approval.AvatarResolver.
type S3Service struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Service(cfg config.AWSConfig) (*S3Service, error) {
	awsCfg, err := LoadAWSConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true // required for localstack
		}
	})

	return &S3Service{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// AvatarURL returns a time-limited GET URL for the stored object key.
func (s *S3Service) AvatarURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(avatarURLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign avatar URL: %w", err)
	}
	return req.URL, nil
}

// CreateBucket exists for localstack bootstrap; buckets are not
// managed by the app in prod.
func (s *S3Service) CreateBucket(ctx context.Context) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	return err
}
