// internal/common/aws/s3.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Clients bundles an S3 client with a presigner built from it.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
}

func NewS3Clients(ctx context.Context, region string) (*S3Clients, error) {
	cfg, err := LoadConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &S3Clients{Client: client, Presigner: s3.NewPresignClient(client)}, nil
}
