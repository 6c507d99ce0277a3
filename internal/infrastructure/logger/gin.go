package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ginLoggerKey = "logger"

// GinMiddleware writes one access line per request. The request-scoped logger
// it builds is reachable through GetGinLogger and L(ctx) in handlers.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		req := c.Request

		scoped := For(req.Context(), base).With(
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
		c.Set(ginLoggerKey, scoped)
		c.Request = req.WithContext(WithContext(req.Context(), scoped))

		c.Next()

		status := c.Writer.Status()
		fields := append(make([]zap.Field, 0, 8),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(began)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		)
		fields = appendIf(fields, "route", c.FullPath())
		fields = appendIf(fields, "query", req.URL.RawQuery)
		// the caller is only known once auth has run further down the chain
		fields = appendIf(fields, "user_id", GetUserID(c.Request.Context()))
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if ce := scoped.Check(accessLevel(status), "request served"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

func appendIf(fields []zap.Field, key, value string) []zap.Field {
	if value == "" {
		return fields
	}
	return append(fields, zap.String(key, value))
}

// Recovery answers a panicking handler with a 500 envelope
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			For(c.Request.Context(), base).Error("handler panicked",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "INTERNAL_ERROR", "message": "internal server error"},
			})
		}()
		c.Next()
	}
}

// GetGinLogger returns the logger GinMiddleware stored on c, or a no-op logger
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Value(ginLoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
