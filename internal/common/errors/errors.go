// Package errors provides the standardized error taxonomy for the posting pipeline.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	ErrCodeGenerationFailed   ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationRejected ErrorCode = "GENERATION_REJECTED"
	ErrCodeGenerationTimeout  ErrorCode = "GENERATION_TIMEOUT"

	ErrCodeMediaProcessingFailed ErrorCode = "MEDIA_PROCESSING_FAILED"
	ErrCodeMediaUploadFailed     ErrorCode = "MEDIA_UPLOAD_FAILED"

	ErrCodePublishFailed   ErrorCode = "PUBLISH_FAILED"
	ErrCodePublishFatal    ErrorCode = "PUBLISH_FATAL"
	ErrCodeDailyCapReached ErrorCode = "DAILY_CAP_REACHED"

	ErrCodePublishOutcomeUnknown ErrorCode = "PUBLISH_OUTCOME_UNKNOWN"

	ErrCodeCounterUnavailable ErrorCode = "COUNTER_UNAVAILABLE"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func causeDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigInvalidError creates a fatal configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a retryable provider error (network, throttling, 5xx).
func NewGenerationFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   fmt.Sprintf("Image generation via '%s' failed", provider),
		Details:   causeDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewGenerationTimeoutError creates a retryable generation timeout error.
func NewGenerationTimeoutError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   fmt.Sprintf("Image generation via '%s' timed out", provider),
		Details:   causeDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewGenerationRejectedError creates a non-retryable error for prompts or
// credentials the provider refuses.
func NewGenerationRejectedError(provider, reason string, err error) *StandardError {
	details := reason
	if err != nil {
		details = fmt.Sprintf("%s: %s", reason, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeGenerationRejected,
		Message:   fmt.Sprintf("Image generation rejected by '%s'", provider),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMediaProcessingFailedError creates a non-retryable image decode/encode error.
func NewMediaProcessingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMediaProcessingFailed,
		Message:   "Media processing failed",
		Details:   causeDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMediaUploadFailedError creates a retryable media hosting error.
func NewMediaUploadFailedError(host string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMediaUploadFailed,
		Message:   fmt.Sprintf("Media upload to '%s' failed", host),
		Details:   causeDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPublishFailedError creates a retryable publish error (rate limited, 5xx).
func NewPublishFailedError(platform string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePublishFailed,
		Message:   fmt.Sprintf("Publishing to '%s' failed", platform),
		Details:   causeDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPublishFatalError creates a non-retryable publish error (auth, permissions, bad request).
func NewPublishFatalError(platform string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePublishFatal,
		Message:   fmt.Sprintf("Publishing to '%s' rejected", platform),
		Details:   causeDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPublishOutcomeUnknownError reports a publish whose request may have
// reached the platform without an answer coming back. Retrying could post
// the item twice, so it is not retryable.
func NewPublishOutcomeUnknownError(platform string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePublishOutcomeUnknown,
		Message:   fmt.Sprintf("Publishing to '%s' may have succeeded", platform),
		Details:   causeDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDailyCapReachedError signals that the day's publish budget is spent.
// It is a stop condition for the run, not a failure.
func NewDailyCapReachedError(day string, max int) *StandardError {
	return &StandardError{
		Code:      ErrCodeDailyCapReached,
		Message:   "Daily post cap reached",
		Details:   fmt.Sprintf("day: %s, max_daily_posts: %d", day, max),
		Retryable: false,
		Metadata:  map[string]interface{}{"day": day, "maxDailyPosts": max},
		Timestamp: time.Now().UTC(),
	}
}

// NewCounterUnavailableError creates a retryable error for a counter backend outage.
func NewCounterUnavailableError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCounterUnavailable,
		Message:   fmt.Sprintf("Daily counter backend '%s' unavailable", backend),
		Details:   causeDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, causeDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandard returns the first StandardError in err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code of err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether err is a transient failure worth another attempt.
// Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.Retryable
	}
	return false
}

// IsDailyCapReached reports whether err carries the daily cap signal.
func IsDailyCapReached(err error) bool {
	return CodeOf(err) == ErrCodeDailyCapReached
}

// IsPublishOutcomeUnknown reports whether a publish may have gone through
// despite the error.
func IsPublishOutcomeUnknown(err error) bool {
	return CodeOf(err) == ErrCodePublishOutcomeUnknown
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	return CodeOf(err) == ErrCodeConfigInvalid
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.HasPrefix(codeStr, "GENERATION"):
		return "GENERATION"
	case strings.HasPrefix(codeStr, "MEDIA"):
		return "MEDIA"
	case strings.HasPrefix(codeStr, "PUBLISH"), code == ErrCodeDailyCapReached:
		return "PUBLISH"
	case strings.HasPrefix(codeStr, "COUNTER"):
		return "COUNTER"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
