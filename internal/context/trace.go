package context

import (
	stdcontext "context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext carries only cross-cutting concerns needed for observability.
type TraceContext struct {
	TraceID string // Globally unique ID for logs and spans
	SpanID  string // Span the sales channel context was built in
}

// NewTraceContext reads the ids of the OpenTelemetry span carried by ctx, or
// generates fresh ones when there is none.
func NewTraceContext(ctx stdcontext.Context) TraceContext {
	tc := TraceContext{
		TraceID: uuid.NewString(),
		SpanID:  uuid.NewString(),
	}
	if ctx == nil {
		return tc
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		tc.TraceID = sc.TraceID().String()
		tc.SpanID = sc.SpanID().String()
	}
	return tc
}
