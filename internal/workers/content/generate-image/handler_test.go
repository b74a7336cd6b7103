// internal/workers/content/generate-image/handler_test.go
package generateimage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-post-scheduler/internal/common/config"
	"ai-post-scheduler/internal/common/errors"
	commonhttp "ai-post-scheduler/internal/common/http"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(provider, baseURL string) *Config {
	return &Config{
		Provider: provider,
		Model:    DefaultModel,
		APIKey:   "sk-test",
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
	}
}

func createTestRequest() models.ContentRequest {
	return models.ContentRequest{
		ID:         "item-1",
		Genre:      "fantasy",
		Style:      "watercolor",
		Theme:      "enchanted forest",
		Palette:    "dreamlike",
		Resolution: "1024x1024",
		Quality:    models.QualityHD,
		Vividness:  "vivid",
		PostType:   models.PostTypeFeed,
		Prompt:     "A highly detailed, professional watercolor artwork in the fantasy genre.",
	}
}

type imagesServer struct {
	status   int
	body     string
	requests []map[string]interface{}
}

func (s *imagesServer) start(t *testing.T) *httptest.Server {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/images/generations"):
			var payload map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			s.requests = append(s.requests, payload)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(s.status)
			_, _ = w.Write([]byte(strings.ReplaceAll(s.body, "{{server}}", server.URL)))
		case r.URL.Path == "/files/art.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("downloaded-png"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func b64Body(data string) string {
	return `{"created":1,"data":[{"b64_json":"` + base64.StdEncoding.EncodeToString([]byte(data)) + `","revised_prompt":"revised"}]}`
}

type blockingProvider struct{}

func (blockingProvider) Name() string { return "blocking" }

func (blockingProvider) Generate(ctx context.Context, _ models.ContentRequest) (*ProviderImage, error) {
	<-ctx.Done()
	return nil, classifyTransport("blocking", ctx.Err())
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Generate_Providers(t *testing.T) {
	providers := map[string]string{
		"official sdk":      ProviderOpenAI,
		"compatible client": ProviderOpenAICompatible,
	}

	for name, provider := range providers {
		t.Run(name, func(t *testing.T) {
			fake := &imagesServer{status: http.StatusOK, body: b64Body("inline-image")}
			server := fake.start(t)

			h, err := NewHandler(createTestConfig(provider, server.URL+"/v1/"), logger.NewTestLogger(t))
			require.NoError(t, err)

			asset, err := h.Generate(context.Background(), createTestRequest())
			require.NoError(t, err)

			assert.Equal(t, []byte("inline-image"), asset.Image)
			assert.Equal(t, "revised", asset.RevisedPrompt)
			assert.Equal(t, provider, asset.Provider)
			assert.Equal(t, "item-1", asset.Request.ID)
			assert.False(t, asset.GeneratedAt.IsZero())

			require.Len(t, fake.requests, 1)
			sent := fake.requests[0]
			assert.Equal(t, "dall-e-3", sent["model"])
			assert.Equal(t, "1024x1024", sent["size"])
			assert.Equal(t, "hd", sent["quality"])
			assert.Equal(t, "vivid", sent["style"])
			assert.Equal(t, createTestRequest().Prompt, sent["prompt"])
		})
	}
}

func TestHandler_Generate_DownloadsURL(t *testing.T) {
	fake := &imagesServer{status: http.StatusOK, body: `{"created":1,"data":[{"url":"{{server}}/files/art.png"}]}`}
	server := fake.start(t)

	h, err := NewHandler(createTestConfig(ProviderOpenAI, server.URL+"/v1/"), logger.NewTestLogger(t))
	require.NoError(t, err)

	asset, err := h.Generate(context.Background(), createTestRequest())
	require.NoError(t, err)

	assert.Equal(t, []byte("downloaded-png"), asset.Image)
	assert.Equal(t, "image/png", asset.ContentType)
	assert.Equal(t, server.URL+"/files/art.png", asset.SourceURL)
}

func TestHandler_Generate_ResponseFormat(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		requestURL bool
		body       string
		expected   string
	}{
		{"official sdk inline", ProviderOpenAI, false, b64Body("inline-image"), "b64_json"},
		{"official sdk url", ProviderOpenAI, true, `{"created":1,"data":[{"url":"{{server}}/files/art.png"}]}`, "url"},
		{"compatible inline", ProviderOpenAICompatible, false, b64Body("inline-image"), "b64_json"},
		{"compatible url", ProviderOpenAICompatible, true, `{"created":1,"data":[{"url":"{{server}}/files/art.png"}]}`, "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &imagesServer{status: http.StatusOK, body: tt.body}
			server := fake.start(t)

			cfg := createTestConfig(tt.provider, server.URL+"/v1/")
			cfg.RequestURL = tt.requestURL
			h, err := NewHandler(cfg, logger.NewTestLogger(t))
			require.NoError(t, err)

			asset, err := h.Generate(context.Background(), createTestRequest())
			require.NoError(t, err)

			require.Len(t, fake.requests, 1)
			assert.Equal(t, tt.expected, fake.requests[0]["response_format"])
			if tt.requestURL {
				assert.Equal(t, server.URL+"/files/art.png", asset.SourceURL)
			}
		})
	}
}

func TestLoadConfig_RequestURL(t *testing.T) {
	tests := []struct {
		name     string
		social   config.SocialMediaConfig
		expected bool
	}{
		{"instagram without hosting", config.SocialMediaConfig{Enabled: true, Platform: "instagram", MediaHosting: config.MediaHostingConfig{Provider: "none"}}, true},
		{"instagram with s3", config.SocialMediaConfig{Enabled: true, Platform: "instagram", MediaHosting: config.MediaHostingConfig{Provider: "s3"}}, false},
		{"telegram uploads bytes", config.SocialMediaConfig{Enabled: true, Platform: "telegram"}, false},
		{"dry run", config.SocialMediaConfig{Enabled: false, Platform: "instagram"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				AIGeneration: config.AIGenerationConfig{Provider: ProviderOpenAI, Timeout: 30},
				SocialMedia:  tt.social,
			}
			assert.Equal(t, tt.expected, LoadConfig(cfg).RequestURL)
		})
	}
}

func TestHandler_Generate_Mock(t *testing.T) {
	h, err := NewHandler(createTestConfig(ProviderMock, ""), logger.NewTestLogger(t))
	require.NoError(t, err)

	req := createTestRequest()
	req.Resolution = "32x16"
	asset, err := h.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "image/png", asset.ContentType)
	img, err := png.Decode(bytes.NewReader(asset.Image))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	again, err := h.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, asset.Image, again.Image)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Generate_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		expectedCode  errors.ErrorCode
		wantRetryable bool
	}{
		{
			name:          "rate limited is transient",
			status:        http.StatusTooManyRequests,
			body:          `{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`,
			expectedCode:  errors.ErrCodeGenerationFailed,
			wantRetryable: true,
		},
		{
			name:          "server error is transient",
			status:        http.StatusBadGateway,
			body:          `{"error":{"message":"upstream","type":"server_error"}}`,
			expectedCode:  errors.ErrCodeGenerationFailed,
			wantRetryable: true,
		},
		{
			name:          "content policy is rejected",
			status:        http.StatusBadRequest,
			body:          `{"error":{"message":"content policy violation","type":"invalid_request_error","code":"content_policy_violation"}}`,
			expectedCode:  errors.ErrCodeGenerationRejected,
			wantRetryable: false,
		},
		{
			name:          "bad key is rejected",
			status:        http.StatusUnauthorized,
			body:          `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`,
			expectedCode:  errors.ErrCodeGenerationRejected,
			wantRetryable: false,
		},
	}

	for _, provider := range []string{ProviderOpenAI, ProviderOpenAICompatible} {
		for _, tt := range tests {
			t.Run(provider+"/"+tt.name, func(t *testing.T) {
				fake := &imagesServer{status: tt.status, body: tt.body}
				server := fake.start(t)

				h, err := NewHandler(createTestConfig(provider, server.URL+"/v1/"), logger.NewTestLogger(t))
				require.NoError(t, err)

				_, err = h.Generate(context.Background(), createTestRequest())
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, errors.CodeOf(err))
				assert.Equal(t, tt.wantRetryable, errors.IsRetryable(err))
				assert.Len(t, fake.requests, 1, "provider must be called exactly once")
			})
		}
	}
}

func TestHandler_Generate_Timeout(t *testing.T) {
	cfg := createTestConfig(ProviderMock, "")
	cfg.Timeout = 20 * time.Millisecond
	h := NewHandlerWithProvider(cfg, blockingProvider{}, nil, logger.NewTestLogger(t))

	_, err := h.Generate(context.Background(), createTestRequest())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGenerationTimeout, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestHandler_Generate_CallerCancellation(t *testing.T) {
	h := NewHandlerWithProvider(createTestConfig(ProviderMock, ""), blockingProvider{}, nil, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Generate(ctx, createTestRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.IsRetryable(err))
}

func TestHandler_Generate_DownloadFailure(t *testing.T) {
	fake := &imagesServer{status: http.StatusOK, body: `{"created":1,"data":[{"url":"{{server}}/files/missing.png"}]}`}
	server := fake.start(t)

	client := commonhttp.NewClient(time.Second)
	h := NewHandlerWithProvider(createTestConfig(ProviderOpenAI, ""),
		NewOpenAIProvider(createTestConfig(ProviderOpenAI, server.URL+"/v1/"), client.HTTPClient()), client, logger.NewTestLogger(t))

	_, err := h.Generate(context.Background(), createTestRequest())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGenerationRejected, errors.CodeOf(err))
}

func TestNewHandler_UnknownProvider(t *testing.T) {
	_, err := NewHandler(createTestConfig("midjourney", ""), logger.NewNoOpLogger())
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in   string
		w, h int
	}{
		{"1024x1792", 1024, 1792},
		{"bogus", 64, 64},
		{"0x10", 64, 64},
	}
	for _, tt := range tests {
		w, h := parseResolution(tt.in)
		assert.Equal(t, tt.w, w, tt.in)
		assert.Equal(t, tt.h, h, tt.in)
	}
}
