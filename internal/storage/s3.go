// Package storage stages meal assets in an S3-compatible bucket.
//
// Clients never stream bytes through the API: they PUT to a presigned URL.
// The worker reads audio back with GetObject and hands pictures to the
// analysis service as presigned GET URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/brenowss/foodiary/internal/apperror"
	"github.com/brenowss/foodiary/internal/awscfg"
	cfg "github.com/brenowss/foodiary/internal/config"
)

const defaultExpiry = 10 * time.Minute

// S3Storage works with AWS S3 and S3-compatible services such as MinIO.
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	uploadExpiry  time.Duration
	readExpiry    time.Duration
	logger        *slog.Logger
}

// S3Config holds configuration for S3 storage
type S3Config struct {
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	Endpoint     string // Optional: for S3-compatible services
	UsePathStyle bool
	UploadExpiry time.Duration
	ReadExpiry   time.Duration
}

// New creates S3 storage from app config.
func New(ctx context.Context, c *cfg.Config, logger *slog.Logger) (*S3Storage, error) {
	logger.Info("initializing S3 storage",
		slog.String("bucket", c.S3Bucket),
		slog.String("region", c.S3Region),
		slog.String("endpoint", c.S3Endpoint),
	)
	return NewS3Storage(ctx, S3Config{
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Endpoint:     c.S3Endpoint,
		UsePathStyle: c.S3UsePathStyle,
		UploadExpiry: c.S3PresignExpiryUpload,
		ReadExpiry:   c.S3PresignExpiryRead,
	}, logger)
}

func NewS3Storage(ctx context.Context, sc S3Config, logger *slog.Logger) (*S3Storage, error) {
	if sc.Bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}

	awsCfg, err := awscfg.Load(ctx, sc.Region, sc.AccessKey, sc.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.Endpoint)
		}
		o.UsePathStyle = sc.UsePathStyle
	})

	if sc.UploadExpiry <= 0 {
		sc.UploadExpiry = defaultExpiry
	}
	if sc.ReadExpiry <= 0 {
		sc.ReadExpiry = defaultExpiry
	}

	return &S3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        sc.Bucket,
		uploadExpiry:  sc.UploadExpiry,
		readExpiry:    sc.ReadExpiry,
		logger:        logger,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist. Meant for local
// MinIO setups; production buckets are provisioned ahead of time.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return apperror.StorageUnavailable("creating bucket "+s.bucket, err)
	}

	s.logger.Info("created S3 bucket", slog.String("bucket", s.bucket))
	return nil
}

// PresignPut returns a URL that lets the holder upload exactly one object.
func (s *S3Storage) PresignPut(ctx context.Context, key string) (string, error) {
	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.uploadExpiry))
	if err != nil {
		return "", apperror.StorageUnavailable("presigning upload", err)
	}
	return req.URL, nil
}

// PresignGet returns a time-limited read URL for one object.
func (s *S3Storage) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.readExpiry))
	if err != nil {
		return "", apperror.StorageUnavailable("presigning download", err)
	}
	return req.URL, nil
}

// Download reads a whole object into memory.
func (s *S3Storage) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, apperror.StorageUnavailable("getting object "+key, err)
	}
	if out.Body == nil {
		return nil, apperror.AssetUnreadable(key)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.AssetUnreadable(key), err)
	}
	return b, nil
}

// NewKey returns a fresh object key with the given extension, e.g. "<uuid>.m4a".
func NewKey(ext string) string {
	return uuid.NewString() + "." + ext
}
