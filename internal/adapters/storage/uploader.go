// Package storage implements domain.ImageUploader on S3 and Google Cloud Storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"compassevent/internal/adapters/awsconfig"
	"compassevent/internal/domain"
)

// S3Config holds configuration for the S3 uploader.
type S3Config struct {
	Bucket string
	AWS    awsconfig.Options
}

// GCSConfig holds configuration for the GCS uploader.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string
}

// UploaderConfig selects and configures an uploader.
type UploaderConfig struct {
	Provider string
	S3       S3Config
	GCS      GCSConfig
}

// NewUploader creates an uploader from config. Provider "s3" uses Amazon S3, "gcs" uses Google Cloud Storage.
func NewUploader(ctx context.Context, config UploaderConfig, logger *slog.Logger) (domain.ImageUploader, error) {
	switch config.Provider {
	case "s3", "":
		if config.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 uploader: bucket is required")
		}
		awsCfg, err := awsconfig.Load(ctx, config.S3.AWS)
		if err != nil {
			return nil, err
		}
		return NewS3Uploader(s3.NewFromConfig(awsCfg), config.S3.Bucket, awsCfg.Region), nil
	case "gcs":
		if config.GCS.Bucket == "" {
			return nil, fmt.Errorf("gcs uploader: bucket is required")
		}
		var opts []option.ClientOption
		if config.GCS.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(config.GCS.CredentialsFile))
		}
		client, err := gcs.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		logger.Info("using gcs image storage", "bucket", config.GCS.Bucket)
		return &gcsUploader{client: client, bucket: config.GCS.Bucket}, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", config.Provider)
	}
}

// ObjectKey builds "<folder>/<uuid><ext>" keeping the original file extension.
func ObjectKey(folder, filename string) string {
	if folder == "" {
		folder = domain.FolderProfiles
	}
	return folder + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

func validateFile(file *domain.File) error {
	if file == nil || len(file.Data) == 0 {
		return fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}
	return nil
}

// PutObjectAPI is the subset of the S3 client used by the uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Uploader struct {
	client PutObjectAPI
	bucket string
	region string
}

// NewS3Uploader returns an uploader that writes to bucket and builds virtual-hosted style URLs.
func NewS3Uploader(client PutObjectAPI, bucket, region string) domain.ImageUploader {
	return &s3Uploader{client: client, bucket: bucket, region: region}
}

func (u *s3Uploader) Upload(ctx context.Context, file *domain.File, folder string) (string, error) {
	if err := validateFile(file); err != nil {
		return "", err
	}
	key := ObjectKey(folder, file.Name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}

type gcsUploader struct {
	client *gcs.Client
	bucket string
}

func (u *gcsUploader) Upload(ctx context.Context, file *domain.File, folder string) (string, error) {
	if err := validateFile(file); err != nil {
		return "", err
	}
	key := ObjectKey(folder, file.Name)
	wc := u.client.Bucket(u.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = file.ContentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, bytes.NewReader(file.Data)); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", key, err)
	}
	return GCSPublicURL(u.bucket, key), nil
}

// GCSPublicURL builds a public URL for an object (assuming public read access).
func GCSPublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
