// Package media pushes attachment bytes to S3-compatible object storage.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/geocoder89/reviewhub/internal/config"
	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/geocoder89/reviewhub/internal/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// metadata key the storage side reads to decide how to process an object
const resourceTypeMeta = "resource-type"

// PutObjectAPI is the single S3 call the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	client  PutObjectAPI
	bucket  string
	baseURL string
	prom    *observability.Prom
	log     *slog.Logger
}

func NewUploader(client PutObjectAPI, bucket, publicBaseURL string, prom *observability.Prom, log *slog.Logger) *Uploader {
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		prom:    prom,
		log:     log,
	}
}

// NewS3Client builds a path-style client for the configured endpoint. SDK
// retries are disabled: a failed put is reported once, as the provider said it.
func NewS3Client(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload stores one attachment and returns its public URL. Every call is an
// independent put; identical buffers produce distinct objects.
func (u *Uploader) Upload(ctx context.Context, a review.Attachment) (string, error) {
	if !a.Kind.Valid() {
		return "", fmt.Errorf("%w: unknown media kind %q", review.ErrUploadFailed, a.Kind)
	}

	mt := mimetype.Detect(a.Data)
	key := objectKey(a.Kind, mt.Extension())

	ctx, span := otel.Tracer(observability.TracerName).Start(ctx, "media.upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("media.kind", string(a.Kind)),
		attribute.String("media.content_type", mt.String()),
		attribute.Int("media.size", len(a.Data)),
	)

	start := time.Now()
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(a.Data),
		ContentLength: aws.Int64(int64(len(a.Data))),
		ContentType:   aws.String(mt.String()),
		Metadata: map[string]string{
			resourceTypeMeta: string(a.Kind),
		},
	})
	u.prom.ObserveUpload(string(a.Kind), len(a.Data), time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object failed")
		u.log.WarnContext(ctx, "media upload failed", "kind", a.Kind, "key", key, "err", err)
		return "", fmt.Errorf("%w: %s: %v", review.ErrUploadFailed, a.Kind, err)
	}

	u.log.DebugContext(ctx, "media uploaded", "kind", a.Kind, "key", key, "bytes", len(a.Data))

	return u.baseURL + "/" + key, nil
}

func objectKey(kind review.MediaKind, ext string) string {
	return string(kind) + "s/" + uuid.NewString() + ext
}
