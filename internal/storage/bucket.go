// Package storage talks to the S3-compatible bucket holding project images.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// Config locates the bucket and its public URL.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the base of public object URLs; an object is served at
	// {PublicURL}/{Bucket}/{key}.
	PublicURL string
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Bucket stores objects under generated keys and derives their public URLs.
type Bucket struct {
	api    objectAPI
	name   string
	prefix string
}

// New builds a Bucket backed by an S3 client for cfg.Endpoint.
func New(ctx context.Context, cfg Config) (*Bucket, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})
	return newBucket(client, cfg.Bucket, cfg.PublicURL), nil
}

func newBucket(api objectAPI, name, publicURL string) *Bucket {
	return &Bucket{
		api:    api,
		name:   name,
		prefix: strings.TrimRight(publicURL, "/") + "/" + name + "/",
	}
}

// Name returns the bucket name.
func (b *Bucket) Name() string {
	return b.name
}

// URL returns the public URL of key.
func (b *Bucket) URL(key string) string {
	return b.prefix + key
}

// KeyFromURL returns the key of an object URL in this bucket.
func (b *Bucket) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, b.prefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// Upload stores data under key and returns its public URL.
func (b *Bucket) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.name),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("max-age=3600"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", domain.ErrStorage, key, err)
	}
	return b.URL(key), nil
}

// Exists reports whether key is stored in the bucket.
func (b *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: head %s: %v", domain.ErrStorage, key, err)
}

// Delete removes keys. Missing keys are not an error.
func (b *Bucket) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
	}

	out, err := b.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(b.name),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("%w: delete %d objects: %v", domain.ErrStorage, len(keys), err)
	}
	if len(out.Errors) > 0 {
		e := out.Errors[0]
		return fmt.Errorf("%w: delete %s: %s", domain.ErrStorage, aws.ToString(e.Key), aws.ToString(e.Message))
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
