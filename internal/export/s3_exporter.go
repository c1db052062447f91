package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	cfg "github.com/dafibh/ledger/internal/config"
	"github.com/dafibh/ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// objectClient is the part of the S3 client the exporter uses
type objectClient interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter writes period summaries as JSON documents to an S3 bucket
type S3Exporter struct {
	client objectClient
	bucket string
	now    func() time.Time
}

// NewS3Exporter creates an exporter for s3cfg.Bucket, creating the bucket when
// it does not exist. It returns domain.ErrExportDisabled when no bucket is set.
func NewS3Exporter(ctx context.Context, s3cfg cfg.S3Config) (*S3Exporter, error) {
	if !s3cfg.Enabled() {
		return nil, domain.ErrExportDisabled
	}

	// Build AWS config options
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	// Add credentials if provided
	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Optional endpoint override for MinIO/LocalStack
	var client *s3.Client
	if s3cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	exporter := newS3Exporter(client, s3cfg.Bucket)
	if err := exporter.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return exporter, nil
}

func newS3Exporter(client objectClient, bucket string) *S3Exporter {
	return &S3Exporter{
		client: client,
		bucket: bucket,
		now:    time.Now,
	}
}

// ensureBucket creates the bucket if it doesn't exist (private, no policy)
func (e *S3Exporter) ensureBucket(ctx context.Context) error {
	_, err := e.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(e.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		// Likely a permission or connectivity problem, not a missing bucket
		return fmt.Errorf("failed to check bucket (may be permission denied): %w", err)
	}

	_, err = e.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(e.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	log.Info().Str("bucket", e.bucket).Msg("Created export bucket")
	return nil
}

// Export uploads summary and returns the s3:// location of the document.
// Exporting a period again overwrites the previous document.
func (e *S3Exporter) Export(ctx context.Context, summary *domain.PeriodSummary) (string, error) {
	data, err := json.MarshalIndent(NewDocument(summary, e.now()), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	key := ObjectKey(summary.Period)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload summary: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", e.bucket, key)
	log.Info().Str("period", summary.Period.String()).Str("location", location).Msg("Exported period summary")
	return location, nil
}

// ObjectKey returns the object key of a period's summary, ledger/YYYY/MM/summary.json
func ObjectKey(period domain.Period) string {
	return fmt.Sprintf("ledger/%04d/%02d/summary.json", period.Year, period.Month)
}
