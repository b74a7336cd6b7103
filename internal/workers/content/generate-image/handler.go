// internal/workers/content/generate-image/handler.go
package generateimage

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"ai-post-scheduler/internal/common/errors"
	commonhttp "ai-post-scheduler/internal/common/http"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/metrics"
	"ai-post-scheduler/internal/models"
)

const (
	TaskType = "generate-image"
)

type Handler struct {
	config   *Config
	provider Provider
	http     *commonhttp.Client
	logger   logger.Logger
	now      func() time.Time
}

// NewHandler builds the provider named in the config.
func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	client := commonhttp.NewClient(config.Timeout)

	var provider Provider
	switch config.Provider {
	case ProviderOpenAI, "":
		provider = NewOpenAIProvider(config, client.HTTPClient())
	case ProviderOpenAICompatible:
		provider = NewCompatibleProvider(config, client.HTTPClient())
	case ProviderMock:
		provider = NewMockProvider()
	default:
		return nil, errors.NewConfigInvalidError(fmt.Sprintf("unknown ai_generation.provider %q", config.Provider))
	}

	return NewHandlerWithProvider(config, provider, client, log), nil
}

func NewHandlerWithProvider(config *Config, provider Provider, client *commonhttp.Client, log logger.Logger) *Handler {
	if client == nil {
		client = commonhttp.NewClient(config.Timeout)
	}
	return &Handler{
		config:   config,
		provider: provider,
		http:     client,
		logger: log.WithFields(map[string]interface{}{
			"taskType": TaskType,
			"provider": provider.Name(),
		}),
		now: time.Now,
	}
}

func (h *Handler) ProviderName() string {
	return h.provider.Name()
}

// Generate makes one provider call for req. The error is a GENERATION_FAILED
// or GENERATION_TIMEOUT StandardError when a retry may help, and
// GENERATION_REJECTED when it cannot.
func (h *Handler) Generate(ctx context.Context, req models.ContentRequest) (*models.GeneratedAsset, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	h.logger.Info("generating image", req.LogFields())

	start := time.Now()
	img, err := h.provider.Generate(ctx, req)
	metrics.GenerationDuration.WithLabelValues(h.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		h.logger.Warn("image generation failed", map[string]interface{}{
			"itemId":    req.ID,
			"error":     err,
			"retryable": errors.IsRetryable(err),
		})
		return nil, err
	}

	data, contentType := img.Data, ""
	if len(data) == 0 {
		if img.URL == "" {
			return nil, errors.NewGenerationFailedError(h.provider.Name(), stderrors.New("provider returned no image"))
		}
		data, contentType, err = h.http.Download(ctx, img.URL)
		if err != nil {
			return nil, h.downloadError(err)
		}
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	h.logger.Info("image generated", map[string]interface{}{
		"itemId":      req.ID,
		"bytes":       len(data),
		"contentType": contentType,
		"durationMs":  time.Since(start).Milliseconds(),
	})

	return &models.GeneratedAsset{
		Image:         data,
		ContentType:   contentType,
		SourceURL:     img.URL,
		RevisedPrompt: img.RevisedPrompt,
		Provider:      h.provider.Name(),
		GeneratedAt:   h.now().UTC(),
		Request:       req,
	}, nil
}

func (h *Handler) downloadError(err error) error {
	var statusErr *commonhttp.StatusError
	if stderrors.As(err, &statusErr) {
		return classifyStatus(h.provider.Name(), statusErr.StatusCode, "image download failed", err)
	}
	return classifyTransport(h.provider.Name(), err)
}
