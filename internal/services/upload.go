package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Content types accepted for chat and comment attachments.
var allowedUploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
}

// MaxUploadSize is the per-file upload cap in bytes.
const MaxUploadSize = 5 << 20

// UploadService stores attachments in an S3-compatible bucket.
type UploadService struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewUploadService creates an upload service. A non-empty endpoint
// switches the client to an S3-compatible provider with path-style keys.
func NewUploadService(region, bucket, accessKey, secretKey, endpoint, publicURL string) (*UploadService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &UploadService{
		s3Client:  client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// AllowedContentType reports whether the mime type may be uploaded.
func AllowedContentType(contentType string) bool {
	_, ok := allowedUploadTypes[contentType]
	return ok
}

// Store writes the file to the bucket under a unique key and returns
// the public URL it will be served from.
func (s *UploadService) Store(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	ext := path.Ext(filename)
	if ext == "" {
		ext = allowedUploadTypes[contentType]
	}
	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}
