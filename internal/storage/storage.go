package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/expotoworld/programs-service/internal/logging"
)

// ObjectPutter is the subset of the S3 client the uploader uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores banner images in a bucket.
type S3Uploader struct {
	Client  ObjectPutter
	Bucket  string
	Region  string
	BaseURL string
}

// NewS3Uploader builds an uploader from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, bucket, region, baseURL string) (*S3Uploader, error) {
	if region == "" {
		region = "eu-central-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Uploader{Client: s3.NewFromConfig(cfg), Bucket: bucket, Region: region, BaseURL: baseURL}, nil
}

// Put uploads body under key and returns its public URL.
func (u *S3Uploader) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	logging.LogKV("info", "banner uploaded", map[string]interface{}{"bucket": u.Bucket, "key": key, "bytes": len(body)})
	if u.BaseURL != "" {
		return u.BaseURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, key), nil
}

// LocalUploader writes banner images below Dir, for development without S3.
type LocalUploader struct {
	Dir     string
	BaseURL string
}

// Put writes body to Dir/key and returns the URL it is served under.
func (u *LocalUploader) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	// Rooting the key before cleaning strips any leading "..".
	clean := path.Clean("/" + key)
	dst := filepath.Join(u.Dir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(dst, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	logging.LogKV("info", "banner stored locally", map[string]interface{}{"path": dst, "bytes": len(body)})
	return u.BaseURL + "/uploads" + clean, nil
}

// Uploader is implemented by both the S3 and local uploaders.
type Uploader interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// New returns an S3 uploader when bucket is set, else a local one.
func New(ctx context.Context, bucket, region, uploadDir, baseURL string) (Uploader, error) {
	if bucket != "" {
		return NewS3Uploader(ctx, bucket, region, baseURL)
	}
	logging.LogKV("warn", "PROGRAMS_S3_BUCKET not set, storing uploads locally", map[string]interface{}{"dir": uploadDir})
	return &LocalUploader{Dir: uploadDir, BaseURL: baseURL}, nil
}
