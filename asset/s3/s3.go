// Package s3 implements an S3-backed asset.Store, for teams that want
// bundle content addressed into object storage instead of a local
// directory. Construction mirrors the teacher's NewLodeS3Client: load
// the AWS SDK's default credential chain, then allow a custom endpoint
// and path-style addressing for S3-compatible providers (R2, MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/asset"
)

// Config configures the S3 asset store.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses the default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers.
	Endpoint string
	// UsePathStyle forces path-style addressing, required by most
	// S3-compatible providers.
	UsePathStyle bool
}

func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New("asset/s3: bucket is required")
	}
	return nil
}

// Store is an S3-backed asset.Store.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a Store using the AWS SDK's default credential chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("asset/s3: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = &endpoint })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	return &Store{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Put reads localPath and uploads it under its content address.
func (s *Store) Put(localPath string) (string, error) {
	data, err := argument.ReadLocal(localPath)
	if err != nil {
		return "", fmt.Errorf("asset/s3: read %q: %w", localPath, err)
	}
	ref := argument.ContentAddress(data)
	key := s.key(ref)

	_, err = s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("asset/s3: put %q: %w", key, err)
	}
	return ref, nil
}

// Get resolves ref back to its bytes.
func (s *Store) Get(ref string) ([]byte, error) {
	key := s.key(ref)
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("asset/s3: get %q: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("asset/s3: read %q: %w", key, err)
	}
	return data, nil
}

// Close releases no resources; the S3 client is stateless.
func (s *Store) Close() error { return nil }

func (s *Store) key(ref string) string {
	hash := strings.TrimPrefix(ref, "bundle://")
	if s.prefix == "" {
		return hash
	}
	return s.prefix + "/" + hash
}

var _ asset.Store = (*Store)(nil)
