// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for consistent tracing across the application.
const (
	SessionIDKey    = "branchplay.session_id"
	ClipIDKey       = "branchplay.clip_id"
	ClipIndexKey    = "branchplay.clip_index"
	ActionTypeKey   = "branchplay.action"
	MediaEventKey   = "branchplay.media_event"
	SessionStateKey = "branchplay.state"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// SessionAttributes describes the session a span operates on.
func SessionAttributes(sessionID, clipID string, clipIndex int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if sessionID != "" {
		attrs = append(attrs, attribute.String(SessionIDKey, sessionID))
	}
	if clipID != "" {
		attrs = append(attrs, attribute.String(ClipIDKey, clipID))
	}
	return append(attrs, attribute.Int(ClipIndexKey, clipIndex))
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

// RecordError marks span as failed. A nil err is ignored.
func RecordError(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(ErrorAttributes(errorType)...)
	span.SetStatus(codes.Error, err.Error())
}
