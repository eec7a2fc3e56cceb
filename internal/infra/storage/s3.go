package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/field-service/internal/config"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores evidence images in an S3-compatible bucket and returns
// their public URLs.
type S3Uploader struct {
	client     putObjectAPI
	transcoder *Transcoder
	bucket     string
	publicURL  string
}

func NewS3Client(cfg *config.Config) *s3.Client {
	return s3.New(s3.Options{
		Region: cfg.S3Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
		BaseEndpoint: endpoint(cfg.S3Endpoint),
		UsePathStyle: cfg.S3Endpoint != "",
	})
}

func endpoint(raw string) *string {
	if raw == "" {
		return nil
	}
	return aws.String(raw)
}

func NewS3Uploader(client putObjectAPI, transcoder *Transcoder, cfg *config.Config) *S3Uploader {
	public := strings.TrimRight(cfg.S3PublicURL, "/")
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	return &S3Uploader{
		client:     client,
		transcoder: transcoder,
		bucket:     cfg.S3Bucket,
		publicURL:  public,
	}
}

func (u *S3Uploader) Upload(
	ctx context.Context,
	appointmentID uint,
	image []byte,
	contentType string,
) (string, error) {

	body, err := u.transcoder.ToWebP(image)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("appointments/%d/evidence/%s.webp", appointmentID, uuid.NewString())

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("image/webp"),
		ACL:           types.ObjectCannedACLPublicRead,
		Metadata: map[string]string{
			"source-content-type": contentType,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload evidence to s3: %w", err)
	}

	return u.publicURL + "/" + key, nil
}

var _ domain.EvidenceStorage = (*S3Uploader)(nil)
