package mediastore

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"voicebridge/internal/config"
)

const audioContentType = "audio/wav"

// S3Client abstracts the S3 API operations used by [S3Remote].
// The [s3.Client] type satisfies this interface.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Remote uploads audio to a bucket under a fixed prefix. PutObject
// replaces an existing key.
type S3Remote struct {
	client    S3Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Remote creates the remote tier. publicURL is the base that object keys
// are appended to; when empty the virtual-hosted AWS URL for region is used.
func NewS3Remote(client S3Client, bucket, prefix, region, publicURL string) *S3Remote {
	if publicURL == "" {
		publicURL = "https://" + bucket + ".s3." + region + ".amazonaws.com"
	}
	return &S3Remote{
		client:    client,
		bucket:    bucket,
		prefix:    strings.Trim(prefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// NewS3Client builds an S3 client from static configuration. Requests are
// unsigned when no access key is configured.
func NewS3Client(cfg config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
				Source:          "voicebridge",
			}, nil
		})
	}
	return s3.New(opts)
}

// key builds the full S3 object key for the given name.
func (r *S3Remote) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "/" + name
}

// Put uploads data and returns its public URL.
func (r *S3Remote) Put(ctx context.Context, name string, data []byte) (string, error) {
	if !ValidName(name) {
		return "", ErrInvalidName
	}
	key := r.key(name)
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(audioContentType),
	})
	if err != nil {
		return "", err
	}
	return r.publicURL + "/" + escapeKey(key), nil
}

// Delete removes name. S3 DeleteObject succeeds for missing keys.
func (r *S3Remote) Delete(ctx context.Context, name string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(name)),
	})
	return err
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
