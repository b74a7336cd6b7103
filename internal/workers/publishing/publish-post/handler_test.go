// internal/workers/publishing/publish-post/handler_test.go
package publishpost

import (
	"context"
	stderrors "errors"
	"io"
	"testing"
	"time"

	"ai-post-scheduler/internal/common/counter"
	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockS3PutService struct {
	PutObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func (m *MockS3PutService) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, params, optFns...)
}

type MockS3PresignService struct {
	PresignFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedURL, error)
}

func (m *MockS3PresignService) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedURL, error) {
	return m.PresignFunc(ctx, params, optFns...)
}

func createTestConfig() *Config {
	return &Config{
		Enabled:       false,
		Platform:      PlatformInstagram,
		PostTypes:     []string{"feed", "story"},
		MaxDailyPosts: 3,
	}
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_DryRunIsCapped(t *testing.T) {
	daily := counter.NewMemoryCounter(1, time.UTC, fixedClock)
	h, err := NewHandler(context.Background(), createTestConfig(), daily, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, PlatformDryRun, h.Name())

	result, err := h.Publish(context.Background(), createTestAsset(t), createTestCaption(), models.PostTypeFeed)
	require.NoError(t, err)
	assert.Equal(t, PlatformDryRun, result.Platform)
	assert.Equal(t, "2024-05-01", result.Day)

	_, err = h.Publish(context.Background(), createTestAsset(t), createTestCaption(), models.PostTypeFeed)
	assert.True(t, errors.IsDailyCapReached(err))
}

func TestHandler_PostTypeNotEnabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.PostTypes = []string{"feed"}
	platform := &MockPublisher{}
	h := NewHandlerWithPublisher(cfg, platform, logger.NewTestLogger(t))

	_, err := h.Publish(context.Background(), createTestAsset(t), createTestCaption(), models.PostTypeStory)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePublishFatal, errors.CodeOf(err))
	assert.Zero(t, platform.Calls())
}

func TestNewHandler_UnknownPlatform(t *testing.T) {
	cfg := createTestConfig()
	cfg.Enabled = true
	cfg.Platform = "myspace"

	_, err := NewHandler(context.Background(), cfg, counter.NewMemoryCounter(1, time.UTC, nil), logger.NewNoOpLogger())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

// ==========================
// S3 Hosting Tests
// ==========================

func TestS3Host_UploadsAndPresigns(t *testing.T) {
	var put *s3.PutObjectInput
	var uploaded []byte
	client := &MockS3PutService{PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		put = params
		uploaded, _ = io.ReadAll(params.Body)
		return &s3.PutObjectOutput{}, nil
	}}
	var presignOpts s3.PresignOptions
	presigner := &MockS3PresignService{PresignFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedURL, error) {
		for _, fn := range optFns {
			fn(&presignOpts)
		}
		return &PresignedURL{URL: "https://bucket.s3.amazonaws.com/" + *params.Key + "?X-Amz-Signature=abc"}, nil
	}}

	host := NewS3HostWithClients(HostingConfig{Bucket: "art", Prefix: "posts", URLExpiry: 30 * time.Minute}, client, presigner)

	url, err := host.Host(context.Background(), "2024-05-01/item-1.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "https://bucket.s3.amazonaws.com/posts/2024-05-01/item-1.jpg?X-Amz-Signature=abc", url)
	assert.Equal(t, "art", *put.Bucket)
	assert.Equal(t, "posts/2024-05-01/item-1.jpg", *put.Key)
	assert.Equal(t, "image/jpeg", *put.ContentType)
	assert.Equal(t, []byte("jpeg"), uploaded)
	assert.Equal(t, 30*time.Minute, presignOpts.Expires)
}

func TestS3Host_UploadFailure(t *testing.T) {
	client := &MockS3PutService{PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, stderrors.New("SlowDown")
	}}
	host := NewS3HostWithClients(HostingConfig{Bucket: "art"}, client, &MockS3PresignService{})

	_, err := host.Host(context.Background(), "k.jpg", []byte("x"), "image/jpeg")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMediaUploadFailed, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}
