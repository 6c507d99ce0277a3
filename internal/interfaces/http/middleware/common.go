// Package middleware holds the gin middleware chain of the API.
package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/logger"
	"github.com/Goutham009/tradewave-sub005/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

const maxRequestIDLength = 64

// RequestID propagates an inbound X-Request-ID or generates one, and stores
// it in the gin context, the request context and the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// CORSConfig lists the allowed cross-origin callers. No origins means no CORS headers.
type CORSConfig struct {
	AllowOrigins []string
	MaxAge       time.Duration
}

var (
	corsMethods       = "GET, POST, OPTIONS"
	corsHeaders       = "Authorization, Content-Type, Idempotency-Key, " + RequestIDHeader
	corsExposeHeaders = RequestIDHeader + ", Retry-After"
)

// CORS answers preflight requests and sets the allow headers for known origins
func CORS(cfg CORSConfig) gin.HandlerFunc {
	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := origin != "" && (wildcard || slices.Contains(cfg.AllowOrigins, origin))
		if allowed {
			h := c.Writer.Header()
			if wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge.Seconds())))
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecureHeaders sets the response headers every JSON API response carries
func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

// BodyLimit rejects request bodies larger than maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "request body exceeds the maximum allowed size")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.Fail(code, message, GetRequestID(c)))
}
