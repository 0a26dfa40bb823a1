package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
)

// S3Config describes an S3-compatible bucket (AWS, MinIO).
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// S3Store keeps avatars as objects in a bucket.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	now      clock
}

// NewS3Store connects to the bucket, creating it when it does not exist.
func NewS3Store(ctx context.Context, cfg S3Config, log *slog.Logger) (*S3Store, error) {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	if err := ensureBucket(ctx, client, cfg, log); err != nil {
		return nil, err
	}

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		now:      time.Now,
	}, nil
}

func ensureBucket(ctx context.Context, client *s3.Client, cfg S3Config, log *slog.Logger) error {
	headCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.HeadBucket(headCtx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err == nil {
		log.Info("avatar bucket ready", "bucket", cfg.Bucket)
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}
	if cfg.Region != "" && cfg.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(cfg.Region),
		}
	}
	if _, err := client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
	}

	waiter := s3.NewBucketExistsWaiter(client)
	if err := waiter.Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}, 30*time.Second); err != nil {
		return fmt.Errorf("failed waiting for bucket %s: %w", cfg.Bucket, err)
	}
	log.Info("avatar bucket created", "bucket", cfg.Bucket)
	return nil
}

// Save uploads content under a millisecond name. The put is conditional on the
// key not existing; on conflict the stamp is advanced and the upload retried.
func (s *S3Store) Save(ctx context.Context, content io.ReadSeeker, ext string) (string, error) {
	contentType, err := DetectContentType(content)
	if err != nil {
		return "", err
	}

	millis := s.now().UnixMilli()
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		if _, err := content.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("failed to rewind avatar content: %w", err)
		}
		name := avatarName(millis+int64(attempt), ext)
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(name),
			Body:        content,
			ContentType: aws.String(contentType),
			IfNoneMatch: aws.String("*"),
		})
		if err == nil {
			return name, nil
		}
		if isPreconditionFailed(err) {
			continue
		}
		return "", fmt.Errorf("failed to upload avatar %s to bucket %s: %w", name, s.bucket, err)
	}
	return "", fmt.Errorf("no free avatar name after %d attempts", maxNameAttempts)
}

// Open streams the object for name.
func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !validName(name) {
		return nil, "", ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get avatar %s from bucket %s: %w", name, s.bucket, err)
	}
	return out.Body, aws.ToString(out.ContentType), nil
}

// DetectContentType sniffs the MIME type from the head of content and rewinds it.
func DetectContentType(content io.ReadSeeker) (string, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read avatar content: %w", err)
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind avatar content: %w", err)
	}
	return mimetype.Detect(head[:n]).String(), nil
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed"
}
