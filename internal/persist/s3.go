package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/otpkeeper/internal/config"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
)

// objectName is appended to the configured prefix.
const objectName = "store.json"

const (
	s3MaxRetries  = 3
	s3RetryBase   = 200 * time.Millisecond
	envelopeCType = "application/json"
)

type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Backend stores the envelope as one object. A PUT replaces the object
// as a whole, which gives Commit its atomicity.
type S3Backend struct {
	client    objectAPI
	bucket    string
	key       string
	retryBase time.Duration
}

// NewS3Backend builds a client from the default AWS config chain, overridden
// by the static credentials, region and endpoint in cfg when set.
func NewS3Backend(ctx context.Context, cfg config.S3) (*S3Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Backend(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Backend(client objectAPI, bucket, prefix string) *S3Backend {
	return &S3Backend{
		client:    client,
		bucket:    bucket,
		key:       path.Join(prefix, objectName),
		retryBase: s3RetryBase,
	}
}

// Key returns the object key of the envelope.
func (b *S3Backend) Key() string {
	return b.key
}

func (b *S3Backend) backoff() retry.Backoff {
	return retry.WithMaxRetries(s3MaxRetries, retry.NewExponential(b.retryBase))
}

func (b *S3Backend) Load(ctx context.Context) (*models.State, error) {
	var data []byte
	err := retry.Do(ctx, b.backoff(), func(ctx context.Context) error {
		out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(b.key),
		})
		if err != nil {
			if isNotFound(err) {
				data = nil
				return nil
			}
			return classify(err)
		}
		defer out.Body.Close()

		data, err = io.ReadAll(out.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return decodeState(data)
}

func (b *S3Backend) Commit(ctx context.Context, state *models.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	err = retry.Do(ctx, b.backoff(), func(ctx context.Context) error {
		_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(b.bucket),
			Key:         aws.String(b.key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(envelopeCType),
		})
		if err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return nil
}

func (b *S3Backend) Close() error { return nil }

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// classify marks throttling, timeouts and 5xx responses as retryable.
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "SlowDown", "InternalError", "ServiceUnavailable", "RequestTimeout", "Throttling":
			return retry.RetryableError(err)
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		code := respErr.HTTPStatusCode()
		if code >= http.StatusInternalServerError || code == http.StatusTooManyRequests {
			return retry.RetryableError(err)
		}
	}
	return err
}
