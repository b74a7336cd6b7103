// internal/workers/publishing/publish-post/capped.go
package publishpost

import (
	"context"
	"time"

	"ai-post-scheduler/internal/common/counter"
	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/models"

	"golang.org/x/time/rate"
)

// CappedPublisher enforces the daily cap and the minimum spacing between
// publishes in front of another Publisher.
//
// The slot is reserved before the platform is contacted, so concurrent
// callers can never exceed the cap. A failed publish gives the slot back
// unless the platform may have accepted it.
type CappedPublisher struct {
	next    Publisher
	counter counter.DailyCounter
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewCappedPublisher wraps next. A zero interval disables spacing.
func NewCappedPublisher(next Publisher, daily counter.DailyCounter, minInterval time.Duration, log logger.Logger) *CappedPublisher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return &CappedPublisher{
		next:    next,
		counter: daily,
		limiter: limiter,
		logger:  log,
	}
}

func (p *CappedPublisher) Name() string {
	return p.next.Name()
}

func (p *CappedPublisher) Publish(ctx context.Context, asset *models.GeneratedAsset, caption models.Caption, postType models.PostType) (*Result, error) {
	day, err := p.counter.Reserve(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		p.release(day)
		return nil, err
	}

	result, err := p.next.Publish(ctx, asset, caption, postType)
	if err != nil {
		if errors.IsPublishOutcomeUnknown(err) {
			p.logger.Warn("keeping daily slot for publish with unknown outcome", map[string]interface{}{
				"day":    day,
				"itemId": asset.Request.ID,
			})
			return nil, err
		}
		p.release(day)
		return nil, err
	}
	result.Day = day
	return result, nil
}

// release uses a fresh context so a cancelled publish still returns its slot.
func (p *CappedPublisher) release(day string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.counter.Release(ctx, day); err != nil {
		p.logger.Warn("failed to release daily slot", map[string]interface{}{
			"day":   day,
			"error": err,
		})
	}
}
