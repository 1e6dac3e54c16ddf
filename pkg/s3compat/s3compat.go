// Package s3compat drives a Swift-compatible deployment through its S3
// middleware (swift3 / s3api). The same containers and objects stay
// reachable as S3 buckets and keys, and presigned URLs take the role temp
// URLs play on the native API.
package s3compat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FeatureName is the /info capability that advertises the S3 middleware
const FeatureName = "s3api"

// defaultRegion satisfies the SDK; the middleware ignores it
const defaultRegion = "us-east-1"

// Options locate the S3 endpoint and its credentials. Access and secret
// key come from the deployment's EC2-credential mapping of the test user.
type Options struct {
	// Endpoint is the S3 listener, e.g. http://127.0.0.1:8080
	Endpoint string

	AccessKey string
	SecretKey string

	// Region defaults to us-east-1
	Region string
}

// Client wraps the SDK's S3 client for harness use
type Client struct {
	s3      *s3.Client
	presign *s3.PresignClient
}

// New builds an S3 client for the deployment. Path-style addressing is
// forced: test deployments rarely resolve virtual-host bucket names.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("s3compat: endpoint is required")
	}
	if opts.Region == "" {
		opts.Region = defaultRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("s3compat: loading SDK config: %w", err)
	}

	s3c := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3:      s3c,
		presign: s3.NewPresignClient(s3c),
	}, nil
}

// CreateBucket creates a bucket, which surfaces as a container on the
// native API.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return fmt.Errorf("s3compat: creating bucket %s: %w", bucket, err)
	}
	return nil
}

// DeleteBucket removes an empty bucket
func (c *Client) DeleteBucket(ctx context.Context, bucket string) error {
	_, err := c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return fmt.Errorf("s3compat: deleting bucket %s: %w", bucket, err)
	}
	return nil
}

// PutObject uploads an object under the given bucket and key
func (c *Client) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3compat: uploading %s/%s: %w", bucket, key, err)
	}
	return nil
}

// GetObject downloads an object's content
func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3compat: downloading %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3compat: reading %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// DeleteObject removes an object
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3compat: deleting %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ListKeys lists object keys under a prefix
func (c *Client) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string

	p := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3compat: listing %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// PresignGet builds a time-limited GET URL for the object. This is the S3
// counterpart of a temp URL: anyone holding the URL can fetch the object
// until it expires, no credentials needed.
func (c *Client) PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3compat: presigning %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}
