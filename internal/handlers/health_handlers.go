package handlers

import (
	"net/http"
	"time"

	"dataclinica/internal/caching"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers answers liveness and readiness probes.
type HealthHandlers struct {
	db    *pgxpool.Pool
	cache caching.CacheService
}

func NewHealthHandlers(db *pgxpool.Pool, cache caching.CacheService) *HealthHandlers {
	return &HealthHandlers{
		db:    db,
		cache: cache,
	}
}

// Health handles GET /health. Always 200 while the process is up.
func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /health/ready. 503 until the database answers.
func (h *HealthHandlers) Ready(c echo.Context) error {
	if err := h.db.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// Detailed handles GET /health/detailed with per-dependency status. The
// cache is optional so a redis outage degrades to "down", not 503.
func (h *HealthHandlers) Detailed(c echo.Context) error {
	ctx := c.Request().Context()

	dbStatus := "up"
	overall := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "down"
		overall = http.StatusServiceUnavailable
	}

	cacheStatus := "up"
	if err := h.cache.Ping(ctx); err != nil {
		cacheStatus = "down"
	}

	return c.JSON(overall, map[string]interface{}{
		"status": map[string]string{
			"database": dbStatus,
			"cache":    cacheStatus,
		},
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}
