package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"fetchjson-go/internal/action"
	"fetchjson-go/internal/dispatch"
	"fetchjson-go/internal/metrics"
)

// MetricsMiddleware returns an Echo middleware that records Prometheus metrics
// for each inbound request.
func MetricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()

			err := next(c)

			// A returned *echo.HTTPError has not been written yet; the
			// central error handler writes it after us.
			statusCode := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					statusCode = he.Code
				}
			}

			status := strconv.Itoa(statusCode)
			method := metrics.NormalizeMethod(c.Request().Method)
			path := metrics.NormalizePath(c.Request().URL.Path)
			duration := time.Since(start).Seconds()

			m.RequestsTotal.WithLabelValues(method, status, path).Inc()
			m.RequestDuration.WithLabelValues(method, status, path).Observe(duration)

			return err
		}
	}
}

// ActionMetrics returns a dispatch middleware that records the count and
// latency of dispatched actions. Action types other than fetchType are
// reported as "other".
func ActionMetrics(m *metrics.Metrics, fetchType string) dispatch.MiddlewareFunc {
	return func(next dispatch.HandlerFunc) dispatch.HandlerFunc {
		return func(ctx context.Context, a *action.Action) (any, error) {
			start := time.Now()

			res, err := next(ctx, a)

			label := metrics.NormalizeActionType(actionType(a), fetchType)
			outcome := metrics.OutcomeOK
			if err != nil {
				outcome = metrics.OutcomeError
			}
			m.DispatchTotal.WithLabelValues(label, outcome).Inc()
			m.DispatchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

			return res, err
		}
	}
}
