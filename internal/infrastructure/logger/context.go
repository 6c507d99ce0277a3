package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	correlationKey
)

// correlation is what ties a log line back to its request and caller
type correlation struct {
	requestID string
	userID    string
	role      string
}

func correlationOf(ctx context.Context) correlation {
	c, _ := ctx.Value(correlationKey).(correlation)
	return c
}

func amend(ctx context.Context, set func(*correlation)) context.Context {
	c := correlationOf(ctx)
	set(&c)
	return context.WithValue(ctx, correlationKey, c)
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return amend(ctx, func(c *correlation) { c.requestID = id })
}

// WithCaller records the authenticated user for later log lines
func WithCaller(ctx context.Context, userID, role string) context.Context {
	return amend(ctx, func(c *correlation) { c.userID, c.role = userID, role })
}

func GetRequestID(ctx context.Context) string { return correlationOf(ctx).requestID }
func GetUserID(ctx context.Context) string    { return correlationOf(ctx).userID }
func GetRole(ctx context.Context) string      { return correlationOf(ctx).role }

// Fields returns the trace, request and caller fields carried by ctx
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.Stringer("trace_id", sc.TraceID()),
			zap.Stringer("span_id", sc.SpanID()),
		)
	}
	c := correlationOf(ctx)
	for _, kv := range [...][2]string{{"request_id", c.requestID}, {"user_id", c.userID}, {"role", c.role}} {
		if kv[1] != "" {
			fields = append(fields, zap.String(kv[0], kv[1]))
		}
	}
	return fields
}

// L is the logger in ctx with its correlation fields attached.
//
//	logger.L(ctx).Info("escrow released", zap.String("escrow_id", id))
func L(ctx context.Context) *zap.Logger {
	return For(ctx, FromContext(ctx))
}

// For attaches the correlation fields of ctx to base
func For(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if fields := Fields(ctx); len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}
