// internal/workers/publishing/publish-post/dryrun.go
package publishpost

import (
	"context"
	"time"

	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/models"

	"github.com/google/uuid"
)

// DryRunPublisher logs what would be posted. Used when social_media.enabled
// is false.
type DryRunPublisher struct {
	logger logger.Logger
}

func NewDryRunPublisher(log logger.Logger) *DryRunPublisher {
	return &DryRunPublisher{logger: log.WithFields(map[string]interface{}{"platform": PlatformDryRun})}
}

func (p *DryRunPublisher) Name() string {
	return PlatformDryRun
}

func (p *DryRunPublisher) Publish(ctx context.Context, asset *models.GeneratedAsset, caption models.Caption, postType models.PostType) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.logger.Info("dry run, not publishing", map[string]interface{}{
		"itemId":   asset.Request.ID,
		"postType": string(postType),
		"bytes":    len(asset.Image),
		"caption":  caption.Text(),
	})
	return &Result{
		Platform:    PlatformDryRun,
		MediaID:     "dry-run-" + uuid.NewString(),
		PostType:    postType,
		PublishedAt: time.Now().UTC(),
	}, nil
}
