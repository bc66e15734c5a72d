package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs HTTP request information at a level matching the status
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		l.WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogSourceAttempt logs one step of the source fallback chain
func LogSourceAttempt(l Logger, source string, posts int, err error) {
	fields := map[string]interface{}{
		"source": source,
		"posts":  posts,
	}

	if err != nil {
		l.WithError(err).WarnWithFields("Source failed, falling back", fields)
		return
	}
	l.InfoWithFields("Source selected", fields)
}

// LogSlot logs the outcome of writing one gallery slot
func LogSlot(l Logger, slot int, postID string, bytes int64, err error) {
	fields := map[string]interface{}{
		"slot":    slot,
		"post_id": postID,
	}

	if err != nil {
		l.WithError(err).ErrorWithFields("Slot update failed", fields)
		return
	}
	fields["bytes"] = bytes
	l.InfoWithFields("Slot updated", fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
