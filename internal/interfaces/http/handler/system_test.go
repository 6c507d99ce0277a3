package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemRouter(h *SystemHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/system/info", h.GetSystemInfo)
	return r
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	r := systemRouter(NewSystemHandler("tradewave-admission", "1.2.3"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/info", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp APIResponse[SystemInfoResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "tradewave-admission", resp.Data.Name)
	assert.Equal(t, "1.2.3", resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
	assert.NotEmpty(t, resp.Data.Uptime)
}

func TestSystemHandler_Health(t *testing.T) {
	failing := ReadinessCheck{Name: "database", Check: func(context.Context) error { return errors.New("down") }}
	r := systemRouter(NewSystemHandler("svc", "dev", failing))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	// liveness ignores dependencies
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSystemHandler_Ready(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		r := systemRouter(NewSystemHandler("svc", "dev",
			ReadinessCheck{Name: "database", Check: ok},
			ReadinessCheck{Name: "redis", Check: ok},
		))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, resp.Checks)
	})

	t.Run("one check fails", func(t *testing.T) {
		r := systemRouter(NewSystemHandler("svc", "dev",
			ReadinessCheck{Name: "database", Check: ok},
			ReadinessCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
		))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})

	t.Run("check honours timeout", func(t *testing.T) {
		h := NewSystemHandler("svc", "dev", ReadinessCheck{Name: "slow", Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}})
		h.checkTimeout = 10 * time.Millisecond

		w := httptest.NewRecorder()
		systemRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "deadline exceeded")
	})
}
