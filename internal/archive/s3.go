package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver stores archived values in an S3 or S3-compatible bucket.
type S3Archiver struct {
	client putObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Archiver builds an S3 client from cfg. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain applies.
func NewS3Archiver(ctx context.Context, cfg Config) (*S3Archiver, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.ForcePathStyle
		}
	})

	return &S3Archiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.KeyPrefix, "/"),
		now:    time.Now,
	}, nil
}

// Archive uploads entry.Data as a JSON object.
func (a *S3Archiver) Archive(ctx context.Context, entry Entry) (Result, error) {
	if err := validate(entry); err != nil {
		return Result{}, err
	}

	key := objectKey(a.prefix, entry, a.now())
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(entry.Data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(entry.Data))),
		Metadata: map[string]string{
			"project-id": entry.ProjectID,
			"field":      entry.Field,
			"reason":     entry.Reason,
		},
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return Result{}, fmt.Errorf("put object: %w", err)
	}

	return Result{Key: key, Location: fmt.Sprintf("s3://%s/%s", a.bucket, key)}, nil
}
