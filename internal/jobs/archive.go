package jobs

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"surveycore/internal/jobs/interfaces"
	"surveycore/internal/providers"
	"surveycore/internal/structures"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads ledger snapshots to a bucket. Snapshots contain no
// participant identity, only token fingerprints and anonymous ids.
type S3Archiver struct {
	client s3Putter
	bucket string
	prefix string
}

func (a *S3Archiver) Archive(ctx context.Context, name string, data []byte) error {
	key := path.Join(a.prefix, name)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/zstd"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

type noopArchiver struct{}

func (noopArchiver) Archive(_ context.Context, _ string, _ []byte) error { return nil }

// NewArchiver returns an S3 archiver when archiving is enabled and a no-op
// otherwise. Credentials and region come from the default AWS chain.
func NewArchiver(conf *structures.Config, logger providers.Logger) (interfaces.ArchiverInterface, error) {
	if !conf.Archive.Enabled {
		return noopArchiver{}, nil
	}
	if conf.Archive.Bucket == "" {
		return nil, fmt.Errorf("archive enabled without a bucket")
	}
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
		UsePathStyle: true,
	})
	logger.Infof(providers.TypeApp, "Snapshot archive enabled: s3://%s/%s", conf.Archive.Bucket, conf.Archive.Prefix)
	return &S3Archiver{client: client, bucket: conf.Archive.Bucket, prefix: conf.Archive.Prefix}, nil
}
