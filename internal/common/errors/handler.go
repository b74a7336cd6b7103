package errors

import (
	"context"
	stderrors "errors"
	"time"
)

// ErrorHandler logs item-level pipeline failures in a uniform shape.
// Item failures never stop the scheduler; the handler only decides how loud to be.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleItemError normalizes err, logs it with the item's context fields and
// returns the normalized error.
func (h *ErrorHandler) HandleItemError(stage string, fields map[string]interface{}, err error) *StandardError {
	stdErr := Normalize(err)

	logFields := map[string]interface{}{
		"stage":         stage,
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
	}
	for k, v := range stdErr.Metadata {
		logFields[k] = v
	}
	for k, v := range fields {
		logFields[k] = v
	}

	if stdErr.Code == ErrCodeDailyCapReached {
		h.logger.Warn("daily cap reached, skipping remaining items", logFields)
		return stdErr
	}
	h.logger.Error("item failed", logFields)
	return stdErr
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	code := ErrCodeInternal
	message := "Unexpected error"
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		message = "Operation cancelled"
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   causeDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
