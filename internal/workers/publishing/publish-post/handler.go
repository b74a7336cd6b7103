// internal/workers/publishing/publish-post/handler.go
package publishpost

import (
	"context"
	"fmt"

	"ai-post-scheduler/internal/common/counter"
	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/metrics"
	"ai-post-scheduler/internal/models"
)

const (
	TaskType = "publish-post"
)

// Handler is the Publisher the scheduler talks to: the platform publisher
// behind the daily cap, restricted to the configured post types.
type Handler struct {
	config    *Config
	publisher Publisher
	logger    logger.Logger
}

// NewHandler builds the publisher chain for the configured platform.
func NewHandler(ctx context.Context, config *Config, daily counter.DailyCounter, log logger.Logger) (*Handler, error) {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	var platform Publisher
	switch {
	case !config.Enabled:
		platform = NewDryRunPublisher(log)
	case config.Platform == PlatformInstagram || config.Platform == "":
		var host MediaHost
		if config.Hosting.Provider == HostingS3 {
			s3Host, err := NewS3Host(ctx, config.Hosting)
			if err != nil {
				return nil, err
			}
			host = s3Host
		}
		platform = NewInstagramPublisher(&config.Instagram, host, log)
	case config.Platform == PlatformTelegram:
		tg, err := NewTelegramPublisher(&config.Telegram, log)
		if err != nil {
			return nil, err
		}
		platform = tg
	default:
		return nil, errors.NewConfigInvalidError(fmt.Sprintf("unknown social_media.platform %q", config.Platform))
	}

	return NewHandlerWithPublisher(config, NewCappedPublisher(platform, daily, config.MinPublishInterval, log), log), nil
}

func NewHandlerWithPublisher(config *Config, publisher Publisher, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		publisher: publisher,
		logger:    log,
	}
}

func (h *Handler) Name() string {
	return h.publisher.Name()
}

func (h *Handler) Publish(ctx context.Context, asset *models.GeneratedAsset, caption models.Caption, postType models.PostType) (*Result, error) {
	if !h.allows(postType) {
		return nil, errors.NewPublishFatalError(h.Name(), fmt.Errorf("post type %q is not enabled in social_media.post_types", postType))
	}

	result, err := h.publisher.Publish(ctx, asset, caption, postType)
	if err != nil {
		return nil, err
	}

	metrics.PostsPublished.WithLabelValues(result.Platform, string(postType)).Inc()
	h.logger.Info("post published", map[string]interface{}{
		"itemId":   asset.Request.ID,
		"platform": result.Platform,
		"mediaId":  result.MediaID,
		"postType": string(postType),
		"day":      result.Day,
	})
	return result, nil
}

func (h *Handler) allows(postType models.PostType) bool {
	if len(h.config.PostTypes) == 0 {
		return true
	}
	for _, pt := range h.config.PostTypes {
		if pt == string(postType) {
			return true
		}
	}
	return false
}
