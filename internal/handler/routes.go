package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fetchjson-go/internal/config"
	"fetchjson-go/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance. The
// metrics endpoint is mounted only when enabled in cfg.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, m *metrics.Metrics, dispatch *DispatchHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/status", health.Status)

	e.POST("/v1/dispatch", dispatch.Handle)

	if cfg.Metrics.Enabled && m != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}
