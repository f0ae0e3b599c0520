package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog"

	"hoaxify/config"
)

type S3Storage struct {
	bucket        string
	prefix        string
	sseEncryption string
	s3Client      s3iface.S3API
	log           zerolog.Logger
}

func NewS3Storage(cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	awsConfig := aws.NewConfig().WithRegion(cfg.S3Region)
	if cfg.S3Endpoint != "" {
		awsConfig = awsConfig.WithEndpoint(cfg.S3Endpoint).WithS3ForcePathStyle(true)
	}
	if cfg.S3AccessKey != "" {
		awsConfig = awsConfig.WithCredentials(credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""))
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	log.Info().Str("bucket", cfg.S3Bucket).Str("prefix", cfg.S3Prefix).Msg("s3 storage initialized")
	return NewS3StorageWithClient(s3.New(sess), cfg.S3Bucket, cfg.S3Prefix, cfg.S3SSEEncryption, log), nil
}

func NewS3StorageWithClient(client s3iface.S3API, bucket, prefix, sseEncryption string, log zerolog.Logger) *S3Storage {
	return &S3Storage{
		bucket:        bucket,
		prefix:        strings.Trim(prefix, "/"),
		sseEncryption: sseEncryption,
		s3Client:      client,
		log:           log,
	}
}

func (s *S3Storage) remotePath(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// countingReader lets us report the size of a streamed upload
type countingReader struct {
	io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.n += int64(n)
	return n, err
}

func (s *S3Storage) Save(ctx context.Context, name string, reader io.Reader, mimeType string) (int64, error) {
	body := &countingReader{Reader: reader}
	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	input := s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.remotePath(name)),
		ContentType: aws.String(mimeType),
		Body:        body,
	}
	if s.sseEncryption != "" {
		input.ServerSideEncryption = aws.String(s.sseEncryption)
	}
	if _, err := uploader.UploadWithContext(ctx, &input); err != nil {
		return 0, err
	}
	return body.n, nil
}

func (s *S3Storage) Delete(ctx context.Context, name string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.remotePath(name)),
	})
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
		return nil
	}
	return err
}
