package telemetry

import (
	"context"
	"errors"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for application spans
const TracerName = "tradewave"

// StartSpan starts an internal span on the global tracer provider.
// Callers end it with EndSpan.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records the outcome of the traced operation and ends span.
// Domain rejections (validation, not found, conflict, gate failures) are
// tagged with their code but leave the span status unset; anything else
// marks the span as failed.
func EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code != shared.CodeInternal {
		span.SetAttributes(attribute.String("error.code", de.Code))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
