// internal/workers/content/generate-image/classify.go
package generateimage

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"ai-post-scheduler/internal/common/errors"
)

// classifyStatus maps a provider HTTP status to a transient or rejected
// generation error.
func classifyStatus(provider string, status int, message string, err error) error {
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusConflict,
		status == http.StatusTooManyRequests,
		status >= 500:
		return errors.NewGenerationFailedError(provider, err).
			WithMetadata("statusCode", status)
	case status >= 400:
		reason := message
		if reason == "" {
			reason = fmt.Sprintf("provider answered %d", status)
		}
		return errors.NewGenerationRejectedError(provider, reason, err).
			WithMetadata("statusCode", status)
	default:
		return errors.NewGenerationFailedError(provider, err)
	}
}

// classifyTransport handles errors that never produced an HTTP status.
// Caller cancellation is passed through untouched so the retry policy stops.
func classifyTransport(provider string, err error) error {
	switch {
	case stderrors.Is(err, context.Canceled):
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewGenerationTimeoutError(provider, err)
	default:
		return errors.NewGenerationFailedError(provider, err)
	}
}
