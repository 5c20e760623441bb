// Package services contains server-side business logic: expense CRUD with
// signed-URL resolution, upload grants, and user authentication.
package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	sc "github.com/dmitrijs2005/expensekeeper/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Signer issues presigned upload and download URLs against the configured
// S3-compatible object store.
type Signer struct {
	config *sc.Config
}

func NewSigner(config *sc.Config) *Signer {
	return &Signer{config: config}
}

// StorageKey builds a fresh object key for an uploaded file. The uuid keeps
// concurrent uploads of identically named files from colliding.
func StorageKey(filename string) string {
	base := strings.ReplaceAll(path.Base(filename), " ", "_")
	return fmt.Sprintf("uploads/%d-%v-%s", time.Now().Unix(), uuid.New(), base)
}

func (s *Signer) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignedPutURL returns a short-lived URL granting a single direct PUT
// of the given content type to key.
func (s *Signer) PresignedPutURL(ctx context.Context, key, contentType string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(s.config.UploadURLTTL))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// PresignedGetURL returns a time-limited download URL for key. Responses must
// call this on every read; the result is never cached server-side.
func (s *Signer) PresignedGetURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.DownloadURLTTL))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
