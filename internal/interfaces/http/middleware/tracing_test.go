package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracing(t *testing.T) {
	recorder := withRecorder(t)
	caller := shared.NewCaller(uuid.New(), shared.RoleAdmin)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Tracing("tradewave-test")...)
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	authed := r.Group("/", Authenticate(auth.NewVerifier(testJWT), nil))
	authed.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	authed.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	token := issue(t, caller, time.Hour, time.Now())
	for _, path := range []string{"/health", "/ok", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(RequestIDHeader, "rid-"+path[1:])
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	spans := recorder.Ended()
	require.Len(t, spans, 2, "health probe is filtered")

	ok := spans[0]
	assert.Equal(t, "GET /ok", ok.Name())
	id, _ := attrValue(ok.Attributes(), "request_id")
	assert.Equal(t, "rid-ok", id)
	user, _ := attrValue(ok.Attributes(), "enduser.id")
	assert.Equal(t, caller.UserID.String(), user)
	role, _ := attrValue(ok.Attributes(), "enduser.role")
	assert.Equal(t, "ADMIN", role)
	assert.NotEqual(t, codes.Error, ok.Status().Code)

	boom := spans[1]
	assert.Equal(t, codes.Error, boom.Status().Code)
}
