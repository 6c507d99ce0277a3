package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// ReadinessCheck probes one dependency
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name         string
	version      string
	checks       []ReadinessCheck
	checkTimeout time.Duration
	startTime    time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, checks ...ReadinessCheck) *SystemHandler {
	return &SystemHandler{
		name:         name,
		version:      version,
		checks:       checks,
		checkTimeout: 2 * time.Second,
		startTime:    time.Now(),
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"tradewave-admission"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthResponse reports liveness or readiness
// @name HandlerHealthResponse
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health godoc
// @ID           health
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready godoc
// @ID           ready
// @Summary      Readiness probe
// @Description  Checks the database and, when configured, Redis
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.checkTimeout)
	defer cancel()

	results := make([]string, len(h.checks))
	var g errgroup.Group
	for i, check := range h.checks {
		g.Go(func() error {
			if err := check.Check(ctx); err != nil {
				results[i] = err.Error()
				return err
			}
			results[i] = "ok"
			return nil
		})
	}
	failed := g.Wait() != nil

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	for i, check := range h.checks {
		resp.Checks[check.Name] = results[i]
	}
	if failed {
		resp.Status = "unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
