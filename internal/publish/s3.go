// Package publish uploads export artifacts to S3.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/usestring/propsearch-mcp/pkg/export"
)

// PutObjectAPI is the S3 call used by Publisher.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config locates the bucket artifacts are written to.
type Config struct {
	Bucket string
	Prefix string
	Region string
}

// Published describes an uploaded artifact.
type Published struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

// Publisher writes artifacts to S3 under {prefix}/{user}/{filename}.
type Publisher struct {
	api PutObjectAPI
	cfg Config
}

// New creates a Publisher over an existing S3 client.
func New(api PutObjectAPI, cfg Config) *Publisher {
	return &Publisher{api: api, cfg: cfg}
}

// NewFromEnv loads the default AWS credential chain for cfg.Region.
func NewFromEnv(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("export bucket is not configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(s3.NewFromConfig(awsCfg), cfg), nil
}

// Key returns the object key for an artifact owned by userID.
func (p *Publisher) Key(userID, filename string) string {
	parts := make([]string, 0, 3)
	if prefix := strings.Trim(p.cfg.Prefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	if userID != "" {
		parts = append(parts, userID)
	}
	parts = append(parts, filename)
	return path.Join(parts...)
}

// Publish uploads the artifact and returns where it was stored.
func (p *Publisher) Publish(ctx context.Context, userID string, a *export.Artifact) (*Published, error) {
	key := p.Key(userID, a.Filename)
	start := time.Now()

	_, err := p.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(a.Data),
		ContentType: aws.String(a.MediaType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	slog.Info("artifact published",
		slog.String("bucket", p.cfg.Bucket),
		slog.String("key", key),
		slog.Int("bytes", len(a.Data)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return &Published{
		Bucket: p.cfg.Bucket,
		Key:    key,
		URL:    fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.cfg.Bucket, p.cfg.Region, key),
	}, nil
}
