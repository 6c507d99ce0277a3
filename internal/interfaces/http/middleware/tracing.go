package middleware

import (
	"fmt"
	"net/http"

	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the otelgin span middleware followed by SpanEnricher.
// Health and metrics probes are not traced.
func Tracing(serviceName string) []gin.HandlerFunc {
	base := otelgin.Middleware(serviceName,
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			switch c.Request.URL.Path {
			case "/health", "/ready", "/metrics":
				return false
			}
			return true
		}),
	)
	return []gin.HandlerFunc{base, SpanEnricher()}
}

// SpanEnricher tags the active server span with the request id, the caller
// and the error state once the rest of the chain has run. It must sit
// inside the otelgin middleware so the span is still open.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		enrichSpan(c)
	}
}

func enrichSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	ctx := c.Request.Context()
	if id := GetRequestID(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if id := logger.GetUserID(ctx); id != "" {
		span.SetAttributes(attribute.String("enduser.id", id))
	}
	if role := logger.GetRole(ctx); role != "" {
		span.SetAttributes(attribute.String("enduser.role", role))
	}
	if status := c.Writer.Status(); status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
	}
	if len(c.Errors) > 0 {
		span.SetAttributes(attribute.String("gin.errors", c.Errors.String()))
	}
}
