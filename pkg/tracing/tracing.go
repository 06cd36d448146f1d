package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "todoapi"

// CreateChildSpan starts a span under the current context.
func CreateChildSpan(ctx context.Context, name string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)

	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddSpanError records err and marks the span as failed.
func AddSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SpanWrapper runs fn inside a span and records its error, if any.
func SpanWrapper(ctx context.Context, name string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := CreateChildSpan(ctx, name, attrs)
	defer span.End()

	err := fn(ctx)

	if err != nil {
		AddSpanError(span, err)
	}

	return err
}

// GetTraceID extracts the trace id from ctx, or "".
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)

	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}

	return ""
}
