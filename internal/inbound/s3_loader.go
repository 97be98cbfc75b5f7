package inbound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const maxRawMessageBytes = 40 << 20

// ErrLoaderNotConfigured is returned when no bucket is known for a message.
var ErrLoaderNotConfigured = errors.New("inbound: raw message bucket not configured")

// S3API is the subset of the S3 client used by S3Loader.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads raw messages that an SES receipt rule stored in S3.
type S3Loader struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Loader creates a loader for objects stored as bucket/prefix+messageID.
func NewS3Loader(client S3API, bucket, prefix string) *S3Loader {
	if client == nil {
		panic("inbound: S3 client cannot be nil")
	}
	return &S3Loader{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key SES uses for a message id.
func (l *S3Loader) Key(messageID string) string {
	if l.prefix == "" {
		return messageID
	}
	return strings.TrimSuffix(l.prefix, "/") + "/" + messageID
}

// LoadMessage fetches the raw message for messageID from the configured
// bucket.
func (l *S3Loader) LoadMessage(ctx context.Context, messageID string) (string, error) {
	return l.Load(ctx, l.bucket, l.Key(messageID))
}

// Load fetches an object by explicit location, as given by an SES S3
// action. An empty bucket falls back to the configured one.
func (l *S3Loader) Load(ctx context.Context, bucket, key string) (string, error) {
	if bucket == "" {
		bucket = l.bucket
	}
	if bucket == "" {
		return "", ErrLoaderNotConfigured
	}
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("inbound: s3 get %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxRawMessageBytes))
	if err != nil {
		return "", fmt.Errorf("inbound: read s3 object %s/%s: %w", bucket, key, err)
	}
	return string(data), nil
}
