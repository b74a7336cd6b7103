// internal/scheduler/runner.go

// Package scheduler runs the compose, generate, caption and publish pipeline
// for every enabled content kind when a schedule slot fires.
package scheduler

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"ai-post-scheduler/internal/common/counter"
	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/metrics"
	"ai-post-scheduler/internal/common/observability"
	"ai-post-scheduler/internal/common/retry"
	"ai-post-scheduler/internal/models"
	publishpost "ai-post-scheduler/internal/workers/publishing/publish-post"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrSlotBusy is returned when a slot fires while another one is running.
var ErrSlotBusy = stderrors.New("scheduler: another slot is still running")

// Components are the pipeline stages a Runner drives. Counter, Alerter,
// Observability and Sleep are optional.
type Components struct {
	Composer      Composer
	Generator     Generator
	Captioner     Captioner
	Publisher     Publisher
	Counter       counter.DailyCounter
	Alerter       Alerter
	Observability *observability.Observability
	Sleep         retry.SleepFunc
}

// Runner holds all scheduling state. Nothing here is process-global, so
// several runners can coexist in one test binary.
type Runner struct {
	config     *Config
	components Components
	policy     *retry.Policy
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
	logger     logger.Logger

	mu    sync.Mutex
	state State
	slot  sync.Mutex
}

func NewRunner(config *Config, components Components, log logger.Logger) *Runner {
	policy := retry.New(config.RetryAttempts, config.RetryDelay, log)
	if components.Sleep != nil {
		policy.Sleep = components.Sleep
	}
	obs := components.Observability
	if obs == nil {
		obs = observability.NewNoop()
	}

	r := &Runner{
		config:     config,
		components: components,
		policy:     policy,
		errHandler: errors.NewErrorHandler(log),
		obs:        obs,
		logger:     log,
	}
	r.setState(StateIdle)
	return r
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()

	for _, st := range allStates {
		v := 0.0
		if st == s {
			v = 1
		}
		metrics.SchedulerState.WithLabelValues(string(st)).Set(v)
	}
}

// RunSlot processes every enabled content kind once.
func (r *Runner) RunSlot(ctx context.Context, trigger string) (*SlotReport, error) {
	return r.runSlot(ctx, trigger, r.config.Kinds)
}

// RunKind processes a single content kind immediately, enabled or not.
func (r *Runner) RunKind(ctx context.Context, kind models.ContentKind) (*SlotReport, error) {
	return r.runSlot(ctx, TriggerManual, []models.ContentKind{kind})
}

func (r *Runner) runSlot(ctx context.Context, trigger string, kinds []models.ContentKind) (*SlotReport, error) {
	if !r.slot.TryLock() {
		r.logger.Warn("slot skipped, previous run still in progress", map[string]interface{}{
			"trigger": trigger,
		})
		return nil, ErrSlotBusy
	}
	defer r.slot.Unlock()

	prev := r.State()
	r.setState(StateRunning)
	defer r.setState(prev)

	report := &SlotReport{RunID: uuid.New().String(), Trigger: trigger}
	log := r.logger.WithFields(map[string]interface{}{
		"runId":   report.RunID,
		"trigger": trigger,
	})

	ctx, span := r.obs.StartSpan(ctx, "scheduler.slot", map[string]string{
		"runId":   report.RunID,
		"trigger": trigger,
	})
	defer span.End()

	start := time.Now()
	log.Info("slot started", map[string]interface{}{"kinds": kinds})

	for _, kind := range kinds {
		if ctx.Err() != nil {
			break
		}
		report.Kinds = append(report.Kinds, r.runKind(ctx, log, report.RunID, kind))
	}

	if err := ctx.Err(); err != nil {
		log.Warn("slot interrupted, in-flight item abandoned", map[string]interface{}{
			"published": report.Published(),
			"error":     err,
		})
		r.obs.RecordSlotRun(context.WithoutCancel(ctx), trigger, "interrupted", time.Since(start))
		return report, err
	}

	r.obs.RecordSlotRun(ctx, trigger, "completed", time.Since(start))
	log.Info("slot finished", map[string]interface{}{
		"published":  report.Published(),
		"failed":     report.Failed(),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return report, nil
}

type generation struct {
	asset *models.GeneratedAsset
	err   error
}

func (r *Runner) runKind(ctx context.Context, log logger.Logger, runID string, kind models.ContentKind) KindReport {
	report := KindReport{Kind: kind}
	log = log.WithFields(map[string]interface{}{"kind": string(kind)})

	requests, err := r.components.Composer.Compose(kind, 0)
	if err != nil {
		stdErr := r.errHandler.HandleItemError(StageCompose, map[string]interface{}{
			"runId": runID,
			"kind":  string(kind),
		}, err)
		metrics.ItemsFailed.WithLabelValues(StageCompose, string(stdErr.Code)).Inc()
		return report
	}
	report.Requested = len(requests)

	requests, report.Skipped = r.trimToCap(ctx, log, kind, requests)
	report.CapHit = report.Skipped > 0
	if len(requests) == 0 {
		return report
	}

	genCtx, cancel := context.WithCancel(ctx)
	results, wait := r.generateAhead(genCtx, runID, kind, requests)
	defer func() {
		cancel()
		wait()
	}()

	for i, req := range requests {
		if ctx.Err() != nil {
			break
		}
		fields := req.LogFields()
		fields["runId"] = runID
		fields["kind"] = string(kind)

		gen := <-results[i]
		if gen.err != nil {
			if ctx.Err() != nil {
				break
			}
			r.itemFailed(StageGenerate, kind, fields, gen.err)
			report.Failed++
			continue
		}
		log.Info("image generated", map[string]interface{}{
			"itemId":   req.ID,
			"provider": gen.asset.Provider,
			"bytes":    len(gen.asset.Image),
		})

		caption := r.components.Captioner.Compose(req)
		log.Debug("caption composed", map[string]interface{}{
			"itemId":   req.ID,
			"hashtags": len(caption.Hashtags),
		})

		result, err := retry.DoValue(ctx, r.policyFor(runID, kind, req), opPublish, func(ctx context.Context) (*publishpost.Result, error) {
			return r.components.Publisher.Publish(ctx, gen.asset, caption, req.PostType)
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.IsDailyCapReached(err) {
				r.errHandler.HandleItemError(StagePublish, fields, err)
				skipped := len(requests) - i
				report.Skipped += skipped
				report.CapHit = true
				metrics.ItemsProcessed.WithLabelValues(string(kind), OutcomeSkipped).Add(float64(skipped))
				break
			}
			r.itemFailed(StagePublish, kind, fields, err)
			report.Failed++
			continue
		}

		report.Published++
		report.Results = append(report.Results, result)
		metrics.ItemsProcessed.WithLabelValues(string(kind), OutcomePublished).Inc()
	}

	log.Info("kind finished", map[string]interface{}{
		"requested": report.Requested,
		"published": report.Published,
		"failed":    report.Failed,
		"skipped":   report.Skipped,
	})
	return report
}

// generateAhead starts generation for every request, at most Concurrency at
// a time. Each request gets a buffered result channel so the publishing loop
// can consume results in order while later images are still being generated.
func (r *Runner) generateAhead(ctx context.Context, runID string, kind models.ContentKind, requests []models.ContentRequest) ([]chan generation, func()) {
	results := make([]chan generation, len(requests))
	for i := range results {
		results[i] = make(chan generation, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i, req := range requests {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					results[i] <- generation{err: err}
					return nil
				}
				asset, err := retry.DoValue(gctx, r.policyFor(runID, kind, req), opGenerate, func(ctx context.Context) (*models.GeneratedAsset, error) {
					return r.components.Generator.Generate(ctx, req)
				})
				results[i] <- generation{asset: asset, err: err}
				return nil
			})
		}
	}()

	return results, func() {
		<-launched
		_ = g.Wait()
	}
}

// trimToCap drops the requests today's remaining cap cannot take, so no
// image is generated that could never be published.
func (r *Runner) trimToCap(ctx context.Context, log logger.Logger, kind models.ContentKind, requests []models.ContentRequest) ([]models.ContentRequest, int) {
	if r.components.Counter == nil {
		return requests, 0
	}
	remaining, err := r.components.Counter.Remaining(ctx)
	if err != nil {
		log.Warn("daily counter unavailable, leaving the cap check to publish", map[string]interface{}{
			"error": err,
		})
		return requests, 0
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining >= len(requests) {
		return requests, 0
	}

	skipped := len(requests) - remaining
	metrics.ItemsProcessed.WithLabelValues(string(kind), OutcomeSkipped).Add(float64(skipped))
	log.Warn("daily cap reached, skipping items", map[string]interface{}{
		"requested":     len(requests),
		"remaining":     remaining,
		"maxDailyPosts": r.components.Counter.Max(),
	})
	return requests[:remaining], skipped
}

// policyFor copies the shared policy with item-scoped log fields and an
// exhaustion alert carrying the item's identity.
func (r *Runner) policyFor(runID string, kind models.ContentKind, req models.ContentRequest) *retry.Policy {
	p := *r.policy
	fields := map[string]interface{}{
		"runId":  runID,
		"kind":   string(kind),
		"itemId": req.ID,
	}
	p.Logger = r.logger.WithFields(fields)
	if r.components.Alerter != nil {
		p.OnExhausted = func(ctx context.Context, exhausted *retry.ExhaustedError) {
			r.components.Alerter.NotifyExhausted(ctx, exhausted, fields)
		}
	}
	return &p
}

func (r *Runner) itemFailed(stage string, kind models.ContentKind, fields map[string]interface{}, err error) {
	stdErr := r.errHandler.HandleItemError(stage, fields, err)
	metrics.ItemsFailed.WithLabelValues(stage, string(stdErr.Code)).Inc()
	metrics.ItemsProcessed.WithLabelValues(string(kind), OutcomeFailed).Inc()
}
