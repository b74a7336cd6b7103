// cmd/post-scheduler/app.go
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ai-post-scheduler/internal/common/config"
	"ai-post-scheduler/internal/common/counter"
	"ai-post-scheduler/internal/common/database"
	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/observability"
	"ai-post-scheduler/internal/scheduler"

	sa "ai-post-scheduler/internal/workers/communication/send-alert"
	cc "ai-post-scheduler/internal/workers/content/compose-caption"
	cp "ai-post-scheduler/internal/workers/content/compose-prompt"
	gi "ai-post-scheduler/internal/workers/content/generate-image"
	pp "ai-post-scheduler/internal/workers/publishing/publish-post"
)

const (
	counterBackendMemory = "memory"
	counterBackendRedis  = "redis"
)

// app owns everything built from the configuration for one process run.
type app struct {
	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
	obs    *observability.Observability
	redis  *database.RedisClient
	runner *scheduler.Runner
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	zapLog, err := logger.Build(logger.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}

	a := &app{
		cfg:    cfg,
		zapLog: zapLog,
		log: logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
			"app":         cfg.App.Name,
			"version":     cfg.App.Version,
			"environment": cfg.App.Environment,
		}),
	}

	if err := a.build(ctx); err != nil {
		a.log.Error("startup failed", map[string]interface{}{
			"errorCode": string(errors.CodeOf(err)),
			"error":     err,
		})
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context) error {
	cfg := a.cfg

	a.obs = observability.NewNoop()
	if cfg.Metrics.Enabled {
		obs, err := observability.New(cfg.App.Name)
		if err != nil {
			a.log.Warn("otel exporter unavailable, slot metrics disabled", map[string]interface{}{"error": err})
		}
		a.obs = obs
	}

	schedCfg, err := scheduler.LoadConfig(cfg)
	if err != nil {
		return err
	}

	daily, err := a.buildCounter(ctx, schedCfg.Location)
	if err != nil {
		return err
	}

	// --- Content stages ---
	promptCfg := cp.LoadConfig(cfg)
	strategy, err := cp.NewStrategy(promptCfg.Strategy, promptCfg.FreshWindow)
	if err != nil {
		return err
	}
	composer := cp.NewHandler(promptCfg, strategy, a.log)

	generator, err := gi.NewHandler(gi.LoadConfig(cfg), a.log)
	if err != nil {
		return err
	}

	captioner := cc.NewHandler(cc.LoadConfig(cfg), a.log)

	// --- Publishing ---
	publisher, err := pp.NewHandler(ctx, pp.LoadConfig(cfg), daily, a.log)
	if err != nil {
		return err
	}

	alerter, err := sa.NewHandler(ctx, sa.LoadConfig(cfg), a.log)
	if err != nil {
		return errors.NewConfigInvalidError("error_handling.notifications: " + err.Error())
	}

	a.runner = scheduler.NewRunner(schedCfg, scheduler.Components{
		Composer:      composer,
		Generator:     generator,
		Captioner:     captioner,
		Publisher:     publisher,
		Counter:       daily,
		Alerter:       alerter,
		Observability: a.obs,
	}, a.log)

	a.log.Info("pipeline ready", map[string]interface{}{
		"provider":      generator.ProviderName(),
		"publisher":     publisher.Name(),
		"strategy":      promptCfg.Strategy,
		"counter":       cfg.Counter.Backend,
		"maxDailyPosts": daily.Max(),
		"alerts":        cfg.ErrorHandling.Notifications.Enabled,
	})
	return nil
}

func (a *app) buildCounter(ctx context.Context, loc *time.Location) (counter.DailyCounter, error) {
	max := a.cfg.SocialMedia.MaxDailyPosts

	switch a.cfg.Counter.Backend {
	case counterBackendRedis:
		rdb := database.NewRedis(a.cfg.Database.Redis)
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, errors.NewCounterUnavailableError(counterBackendRedis, err)
		}
		a.redis = rdb
		a.log.Info("Redis connected successfully", map[string]interface{}{"address": a.cfg.Database.Redis.Address})
		return counter.NewRedisCounter(rdb.Client, a.cfg.Counter.KeyPrefix, max, loc, nil), nil
	case counterBackendMemory, "":
		return counter.NewMemoryCounter(max, loc, nil), nil
	default:
		return nil, errors.NewConfigInvalidError(fmt.Sprintf("unknown counter.backend %q", a.cfg.Counter.Backend))
	}
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.obs != nil {
		a.obs.Shutdown()
	}
	if a.zapLog != nil {
		_ = a.zapLog.Sync()
	}
}
