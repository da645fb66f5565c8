package storage

import (
	"alcyxob/fitness-catalog/internal/config"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Storage implements AssetCache using an S3-compatible backend.
type s3Storage struct {
	client     *s3.Client
	bucketName string
	prefix     string
}

// NewS3Storage creates a new S3 asset cache.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (AssetCache, error) {
	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS SDK config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		// S3-compatible stores (MinIO, Spaces) need a custom endpoint and path-style addressing.
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Storage{
		client:     s3Client,
		bucketName: cfg.BucketName,
		prefix:     cfg.Prefix,
	}, nil
}

func (s *s3Storage) objectKey(key string) string {
	return path.Join(s.prefix, key)
}

// Get downloads a cached asset.
func (s *s3Storage) Get(ctx context.Context, key string) (*Asset, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	return &Asset{ContentType: aws.ToString(out.ContentType), Data: data}, nil
}

// Put uploads an asset, replacing any previous object under key.
func (s *s3Storage) Put(ctx context.Context, key string, asset Asset) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(asset.Data),
		ContentType:   aws.String(asset.ContentType),
		ContentLength: aws.Int64(int64(len(asset.Data))),
	})
	return err
}

// AssetKey is the cache key for a catalog animation at a resolution.
func AssetKey(catalogID string, resolution int) string {
	return fmt.Sprintf("exercise/%s/%d", catalogID, resolution)
}
