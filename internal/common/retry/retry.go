// Package retry wraps remote calls with a bounded, fixed-delay retry loop.
package retry

import (
	"context"
	"fmt"
	"time"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/metrics"
)

// ExhaustedError is returned when every attempt failed with a transient error.
type ExhaustedError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the default SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Policy calls an operation at most Attempts times, waiting Delay between
// attempts. Only errors classified retryable by errors.IsRetryable are retried.
type Policy struct {
	Attempts int
	Delay    time.Duration
	Sleep    SleepFunc
	Logger   logger.Logger
	// OnExhausted runs once when the last attempt fails.
	OnExhausted func(ctx context.Context, err *ExhaustedError)
}

// New builds a policy with the default sleep.
func New(attempts int, delay time.Duration, log logger.Logger) *Policy {
	return &Policy{
		Attempts: attempts,
		Delay:    delay,
		Sleep:    ContextSleep,
		Logger:   log,
	}
}

// Do runs fn under the policy.
func (p *Policy) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}
	log := p.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			metrics.RemoteCallAttempts.WithLabelValues(operation, "success").Inc()
			if attempt > 1 {
				log.Info(fmt.Sprintf("%s succeeded after retry", operation), map[string]interface{}{
					"attempt":     attempt,
					"maxAttempts": attempts,
				})
			}
			return nil
		}

		if !errors.IsRetryable(lastErr) {
			metrics.RemoteCallAttempts.WithLabelValues(operation, "fatal").Inc()
			log.Error(fmt.Sprintf("%s failed with non-retryable error", operation), map[string]interface{}{
				"attempt":   attempt,
				"errorCode": string(errors.CodeOf(lastErr)),
				"error":     lastErr,
			})
			return lastErr
		}
		metrics.RemoteCallAttempts.WithLabelValues(operation, "transient").Inc()

		if attempt == attempts {
			break
		}

		log.Warn(fmt.Sprintf("%s failed, retrying...", operation), map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": attempts,
			"nextRetryIn": p.Delay.String(),
			"error":       lastErr,
		})
		if err := sleep(ctx, p.Delay); err != nil {
			return fmt.Errorf("%s aborted after %d attempts: %w", operation, attempt, err)
		}
	}

	exhausted := &ExhaustedError{Operation: operation, Attempts: attempts, Err: lastErr}
	log.Error(fmt.Sprintf("%s failed after retries", operation), map[string]interface{}{
		"attempts":  attempts,
		"errorCode": string(errors.CodeOf(lastErr)),
		"error":     lastErr,
	})
	if p.OnExhausted != nil {
		p.OnExhausted(ctx, exhausted)
	}
	return exhausted
}

// DoValue is Do for operations that return a value.
func DoValue[T any](ctx context.Context, p *Policy, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, operation, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
