// internal/workers/publishing/publish-post/hosting.go
package publishpost

import (
	"bytes"
	"context"
	"path"
	"time"

	commonaws "ai-post-scheduler/internal/common/aws"
	"ai-post-scheduler/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MediaHost stores prepared media where the platform can fetch it by URL.
type MediaHost interface {
	Host(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Define interfaces for mocking
type S3PutService interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3PresignService interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedURL, error)
}

// PresignedURL keeps the presigner interface free of the v4 signer package.
type PresignedURL struct {
	URL string
}

type presignClient struct {
	client *s3.PresignClient
}

func (p presignClient) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedURL, error) {
	req, err := p.client.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return nil, err
	}
	return &PresignedURL{URL: req.URL}, nil
}

// S3Host uploads media to a bucket and hands out presigned GET URLs.
type S3Host struct {
	bucket    string
	prefix    string
	expiry    time.Duration
	client    S3PutService
	presigner S3PresignService
}

func NewS3Host(ctx context.Context, cfg HostingConfig) (*S3Host, error) {
	clients, err := commonaws.NewS3Clients(ctx, cfg.Region)
	if err != nil {
		return nil, errors.NewConfigInvalidError("load AWS config: " + err.Error())
	}
	return NewS3HostWithClients(cfg, clients.Client, presignClient{client: clients.Presigner}), nil
}

func NewS3HostWithClients(cfg HostingConfig, client S3PutService, presigner S3PresignService) *S3Host {
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &S3Host{
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		expiry:    expiry,
		client:    client,
		presigner: presigner,
	}
}

func (h *S3Host) Host(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := path.Join(h.prefix, key)

	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", errors.NewMediaUploadFailedError(HostingS3, err)
	}

	signed, err := h.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(h.expiry))
	if err != nil {
		return "", errors.NewMediaUploadFailedError(HostingS3, err)
	}
	return signed.URL, nil
}
