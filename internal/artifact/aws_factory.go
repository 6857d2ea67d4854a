// Where: internal/artifact/aws_factory.go
// What: AWS SDK S3 client construction and adapter.
// Why: Encapsulate SDK configuration, including S3-compatible custom endpoints.
package artifact

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client builds an S3API backed by the AWS SDK. A non-empty
// endpoint switches to path-style addressing for S3-compatible stores
// (MinIO, R2, and friends). Static credentials from AWS_ACCESS_KEY_ID /
// AWS_SECRET_ACCESS_KEY take precedence over the default chain.
func NewS3Client(ctx context.Context, region, endpoint string) (S3API, error) {
	if region == "" {
		return nil, fmt.Errorf("region is required")
	}

	options := []func(*config.LoadOptions) error{config.WithRegion(region)}
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey != "" && secretKey != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if endpoint != "" {
			opts.BaseEndpoint = aws.String(endpoint)
			opts.UsePathStyle = true
		}
	})
	return awsS3Client{client: client}, nil
}

type awsS3Client struct {
	client *s3.Client
}

func (c awsS3Client) PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	return err
}
