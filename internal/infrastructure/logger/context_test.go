package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestCorrelationValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithCaller(ctx, "user-7", "ADMIN")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-7", GetUserID(ctx))
	assert.Equal(t, "ADMIN", GetRole(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestFields_Trace(t *testing.T) {
	assert.Empty(t, Fields(context.Background()))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "admit")
	defer span.End()

	core, recorded := observer.New(zapcore.DebugLevel)
	For(ctx, zap.New(core)).Info("gate evaluated")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestWithCaller_KeepsRequestID(t *testing.T) {
	ctx := WithCaller(WithRequestID(context.Background(), "req-3"), "user-2", "SUPPLIER")
	ctx = WithRequestID(ctx, "req-4")
	assert.Equal(t, "req-4", GetRequestID(ctx))
	assert.Equal(t, "user-2", GetUserID(ctx))
	assert.Equal(t, "SUPPLIER", GetRole(ctx))
}

func TestL_EnrichesWithContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-9")
	ctx = WithCaller(ctx, "user-1", "BUYER")

	L(ctx).Info("shipment confirmed")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "BUYER", fields["role"])
	assert.NotContains(t, fields, "trace_id")
}

func TestFor_NilBase(t *testing.T) {
	assert.NotPanics(t, func() {
		For(WithRequestID(context.Background(), "r"), nil).Info("ignored")
	})
}
