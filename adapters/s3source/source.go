// Package s3source loads the adoption dataset from an S3-compatible object
// store (AWS S3 or MinIO).
package s3source

import (
	"context"
	stderrors "errors"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"adoptdash/adapters/tabular"
	"adoptdash/domain/adoption"
	"adoptdash/internal"
	"adoptdash/internal/errors"
)

// Config holds explicit construction parameters. Credentials come from the
// default AWS chain (AWS_ACCESS_KEY_ID, profiles, instance roles).
type Config struct {
	Region    string
	Endpoint  string // optional; enables a custom endpoint such as MinIO
	PathStyle bool
}

// Source reads one object and parses it with the tabular reader.
type Source struct {
	client *s3.Client
	bucket string
	key    string
	reader *tabular.DataReader
	logger *internal.Logger
}

// ParseURL splits s3://bucket/key.
func ParseURL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", errors.InvalidInput("invalid S3 URL: " + raw)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", errors.InvalidInput("S3 URL must look like s3://bucket/key: " + raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", errors.InvalidInput("S3 URL has no object key: " + raw)
	}
	return u.Host, key, nil
}

// New builds a client from the default AWS configuration.
func New(ctx context.Context, rawURL string, cfg Config, tcfg tabular.Config, logger *internal.Logger) (*Source, error) {
	bucket, key, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.ExternalServiceError("s3", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, bucket, key, tcfg, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, bucket, key string, tcfg tabular.Config, logger *internal.Logger) *Source {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Source{
		client: client,
		bucket: bucket,
		key:    key,
		reader: tabular.NewDataReader(tcfg, logger),
		logger: logger,
	}
}

// Load downloads the object and parses it.
func (s *Source) Load(ctx context.Context) (*adoption.Dataset, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.MissingInputFile(s.Describe(), err)
		}
		return nil, errors.ExternalServiceError("s3", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.ExternalServiceError("s3", err)
	}
	s.logger.Debug("[S3Source] fetched %s (%d bytes)", s.Describe(), len(data))
	return s.reader.Parse(s.key, data)
}

// Describe returns the s3:// URL of the object.
func (s *Source) Describe() string {
	return "s3://" + s.bucket + "/" + s.key
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if stderrors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if stderrors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}
