// Package storage uploads media images to S3.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/Taichi-iskw/enki/internal/errors"
)

const imageExtension = ".jpg"

// putObjectAPI is the part of *s3.Client used here
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes images to a public bucket under random names
type S3Store struct {
	client putObjectAPI
	bucket string
	region string
}

// NewS3Store loads the default AWS credential chain for region
func NewS3Store(ctx context.Context, bucket, region string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to load AWS configuration")
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, region), nil
}

// NewS3StoreWithClient creates an S3Store with custom client (for testing)
func NewS3StoreWithClient(client putObjectAPI, bucket, region string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region}
}

// PutImage uploads content as <uuid>.jpg and returns its public URL
func (s *S3Store) PutImage(ctx context.Context, content []byte, contentType string) (string, error) {
	if len(content) == 0 {
		return "", errors.New(errors.CodeInvalidArg, "image is empty")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := uuid.NewString() + imageExtension
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, "failed to upload image")
	}
	return s.URL(key), nil
}

// URL returns the public address of key
func (s *S3Store) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
