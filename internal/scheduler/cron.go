// internal/scheduler/cron.go
package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"

	"github.com/robfig/cron/v3"
)

// Run registers one daily cron entry per enabled schedule time and blocks
// until ctx is cancelled. Entries fire at minute granularity in the
// configured timezone. A running slot sees the same ctx, so shutdown
// abandons its in-flight item; Run returns once that slot has unwound.
func (r *Runner) Run(ctx context.Context) error {
	entries := r.config.enabledEntries()
	if len(entries) == 0 {
		return errors.NewConfigInvalidError("scheduling.daily_runs has no enabled entry")
	}

	loc := r.config.Location
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger: r.logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	slots := make([]string, 0, len(entries))
	for _, entry := range entries {
		trigger := entry.String()
		if _, err := c.AddFunc(entry.CronSpec(), func() { r.runScheduled(ctx, trigger) }); err != nil {
			return errors.NewConfigInvalidError(fmt.Sprintf("schedule %s: %v", trigger, err))
		}
		slots = append(slots, trigger)
	}

	c.Start()
	r.setState(StateWaiting)
	r.logger.Info("scheduler started", map[string]interface{}{
		"slots":    slots,
		"timezone": loc.String(),
		"kinds":    r.config.Kinds,
	})
	for _, e := range c.Entries() {
		r.logger.Debug("next run", map[string]interface{}{"at": e.Next.Format(time.RFC3339)})
	}

	<-ctx.Done()
	r.logger.Info("shutdown requested, stopping scheduler", nil)

	<-c.Stop().Done()
	r.setState(StateStopped)
	r.logger.Info("scheduler stopped", nil)
	return nil
}

func (r *Runner) runScheduled(ctx context.Context, trigger string) {
	_, err := r.RunSlot(ctx, trigger)
	if err == nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, ErrSlotBusy) {
		return
	}
	r.logger.Error("slot run failed", map[string]interface{}{
		"trigger": trigger,
		"error":   err,
	})
}

// cronLogger routes robfig/cron's key/value logging into logger.Logger.
type cronLogger struct {
	logger logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvFields(keysAndValues)
	fields["error"] = err
	l.logger.Error("cron: "+msg, fields)
}

func kvFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
