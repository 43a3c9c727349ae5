package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 implements Store on top of an S3-compatible bucket.
type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// New creates an S3 store. Bucket and credentials are required.
func New(cfg Config) (*S3, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// Put uploads body under key with the configured ACL.
func (s *S3) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	acl := types.ObjectCannedACLPrivate
	if s.cfg.ACL == ACLPublicRead {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           acl,
	})
	if err != nil {
		return wrapS3Error(err, ErrUploadFailed)
	}
	return nil
}

// Delete removes key from the bucket.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// URL returns the public URL for public-read buckets and a signed URL otherwise.
func (s *S3) URL(ctx context.Context, key string) (string, error) {
	if s.cfg.ACL == ACLPublicRead {
		return s.publicURL(key), nil
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.URLExpiry))
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}
	return req.URL, nil
}

func (s *S3) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.cfg.Endpoint, "/")
		if s.cfg.PathStyle {
			return fmt.Sprintf("%s/%s/%s", endpoint, s.cfg.Bucket, key)
		}
		return endpoint + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

var _ Store = (*S3)(nil)
