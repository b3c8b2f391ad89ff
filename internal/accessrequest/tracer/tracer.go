// Package tracer provides a lightweight tracing abstraction for the access
// request workflow.
//
// It defines an internal tracer interface that doesn't depend directly on
// OpenTelemetry APIs, so the lifecycle engine can emit distributed traces
// while remaining decoupled from specific tracing implementations.
//
// Implementations:
//   - NoopTracer: For tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to
	// child operations. The span must be ended by calling Span.End().
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names used by the access request workflow.
const (
	SpanSendRequest = "accessrequest.send"
	SpanApprove     = "accessrequest.approve"
	SpanReject      = "accessrequest.reject"
	SpanGet         = "accessrequest.get"
	SpanList        = "accessrequest.list"
)

// Attribute keys used by the access request workflow.
const (
	AttrRequestID    = "request.id"
	AttrEmployerID   = "request.employer_id"
	AttrEnrollmentID = "request.enrollment_id"
	AttrPurpose      = "request.purpose"
	AttrStatus       = "request.status"
	AttrFieldCount   = "request.field_count"
	AttrStrictMode   = "engine.strict_mode"
)
