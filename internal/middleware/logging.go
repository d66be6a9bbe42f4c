// Package middleware provides Echo middleware for the HTTP host and
// dispatch middleware for the action pipeline.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fetchjson-go/internal/action"
	"fetchjson-go/internal/dispatch"
)

// RequestLogger returns an Echo middleware that logs each request with slog.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			logger.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
				"bytes_in", req.ContentLength,
			)

			return err
		}
	}
}

// ActionLogger returns a dispatch middleware that logs every action passing
// through the pipeline under a fresh dispatch id.
func ActionLogger(logger *slog.Logger) dispatch.MiddlewareFunc {
	return func(next dispatch.HandlerFunc) dispatch.HandlerFunc {
		return func(ctx context.Context, a *action.Action) (any, error) {
			start := time.Now()
			id := uuid.NewString()

			res, err := next(ctx, a)

			attrs := []any{
				"dispatch_id", id,
				"type", actionType(a),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if p, ok := a.Fetch(); ok && p.URL != "" {
				attrs = append(attrs, "url", p.URL)
			}
			if err != nil {
				logger.WarnContext(ctx, "dispatch failed", append(attrs, "err", err)...)
				return res, err
			}
			logger.DebugContext(ctx, "dispatched", attrs...)
			return res, nil
		}
	}
}

func actionType(a *action.Action) string {
	if a == nil {
		return ""
	}
	return a.Type
}
