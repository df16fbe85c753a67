package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a dependency answers. A nil check means the dependency is not configured.
type HealthCheck func(ctx context.Context) error

// HealthController handles health check endpoints.
type HealthController struct {
	database HealthCheck
	cache    HealthCheck
	timeout  time.Duration
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	Timestamp string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance.
func NewHealthController(database, cache HealthCheck) *HealthController {
	return &HealthController{
		database: database,
		cache:    cache,
		timeout:  2 * time.Second,
	}
}

// Check handles GET /health requests.
// The API answers 200 while the database is reachable; a missing cache only degrades live updates.
func (h *HealthController) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	dbStatus := checkStatus(ctx, h.database, "disconnected")
	cacheStatus := checkStatus(ctx, h.cache, "in-memory")

	status, code := "ok", http.StatusOK
	if dbStatus != "connected" {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Database:  dbStatus,
		Cache:     cacheStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func checkStatus(ctx context.Context, check HealthCheck, missing string) string {
	if check == nil {
		return missing
	}
	if err := check(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}
