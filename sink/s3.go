package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 writes artifacts to an object store bucket, keyed as
// <prefix>/<kind-dir>/<name>.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
	dirs   map[Kind]string
}

// S3Options configures an object store sink.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string

	// Endpoint overrides the service endpoint, for S3-compatible stores.
	Endpoint string

	// Per-kind key directories; falls back to the Kind name when empty.
	SpecDir, BodyDir, TriggerDir, ViewDir string
}

// NewS3 builds an object store sink with static credentials.
func NewS3(opts S3Options) *S3 {
	client := s3.New(s3.Options{
		Region:      opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		BaseEndpoint: func() *string {
			if opts.Endpoint == "" {
				return nil
			}
			return aws.String(opts.Endpoint)
		}(),
	})
	return newS3WithClient(client, opts)
}

func newS3WithClient(client *s3.Client, opts S3Options) *S3 {
	dirs := map[Kind]string{
		KindSpec:    opts.SpecDir,
		KindBody:    opts.BodyDir,
		KindTrigger: opts.TriggerDir,
		KindView:    opts.ViewDir,
	}
	for kind, dir := range dirs {
		if dir == "" {
			dirs[kind] = kind.String()
		}
	}
	return &S3{client: client, bucket: opts.Bucket, prefix: opts.Prefix, dirs: dirs}
}

func (s *S3) WriteArtifact(ctx context.Context, kind Kind, name string, content []byte) error {
	key := path.Join(s.prefix, s.dirs[kind], name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
