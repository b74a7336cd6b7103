// internal/scheduler/smoke.go
package scheduler

import (
	"context"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/retry"
	"ai-post-scheduler/internal/models"
	publishpost "ai-post-scheduler/internal/workers/publishing/publish-post"

	"github.com/google/uuid"
)

// SmokeTest pushes one feed post, and one story when stories are enabled,
// through the whole pipeline. Any failure is returned and alerted; callers
// must not start the scheduler after one. A cap already used up for today
// is not a failure.
func (r *Runner) SmokeTest(ctx context.Context) error {
	prev := r.State()
	r.setState(StateRunning)
	defer r.setState(prev)

	kinds := []models.ContentKind{models.KindPosts}
	if r.config.storiesEnabled() {
		kinds = append(kinds, models.KindStories)
	}

	for _, kind := range kinds {
		if err := r.smokeKind(ctx, kind); err != nil {
			r.logger.Error("smoke test failed", map[string]interface{}{
				"kind":      string(kind),
				"errorCode": string(errors.CodeOf(err)),
				"error":     err,
			})
			if r.components.Alerter != nil {
				r.components.Alerter.NotifySmokeTestFailed(ctx, err)
			}
			return err
		}
	}

	r.logger.Info("smoke test passed", map[string]interface{}{"kinds": kinds})
	return nil
}

func (r *Runner) smokeKind(ctx context.Context, kind models.ContentKind) error {
	runID := uuid.New().String()
	ctx, span := r.obs.StartSpan(ctx, "scheduler.smoke_test", map[string]string{
		"runId": runID,
		"kind":  string(kind),
	})
	defer span.End()

	requests, err := r.components.Composer.Compose(kind, 1)
	if err != nil {
		return err
	}
	req := requests[0]

	// the smoke test sends its own alert, so exhausted retries stay quiet
	policy := *r.policy
	policy.Logger = r.logger.WithFields(map[string]interface{}{
		"runId":   runID,
		"trigger": TriggerSmokeTest,
		"itemId":  req.ID,
	})

	asset, err := retry.DoValue(ctx, &policy, opGenerate, func(ctx context.Context) (*models.GeneratedAsset, error) {
		return r.components.Generator.Generate(ctx, req)
	})
	if err != nil {
		return err
	}

	caption := r.components.Captioner.Compose(req)
	result, err := retry.DoValue(ctx, &policy, opPublish, func(ctx context.Context) (*publishpost.Result, error) {
		return r.components.Publisher.Publish(ctx, asset, caption, req.PostType)
	})
	if err != nil {
		if errors.IsDailyCapReached(err) {
			r.logger.Warn("smoke test publish skipped, daily cap already reached", map[string]interface{}{
				"kind": string(kind),
			})
			return nil
		}
		return err
	}

	r.logger.Info("smoke test item published", map[string]interface{}{
		"kind":     string(kind),
		"platform": result.Platform,
		"mediaId":  result.MediaID,
	})
	return nil
}
