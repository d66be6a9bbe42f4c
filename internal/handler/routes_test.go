package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"fetchjson-go/internal/config"
	"fetchjson-go/internal/metrics"
	"fetchjson-go/internal/service"
)

func TestRegisterRoutes_Wiring(t *testing.T) {
	cfg, err := config.Default(&config.CLI{})
	if err != nil {
		t.Fatalf("config.Default() error = %v", err)
	}
	cfg.Metrics.Enabled = true

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	svc := service.NewDispatchService(cfg, logger, m)

	e := echo.New()
	RegisterRoutes(e, cfg, m, NewDispatchHandler(svc, logger), NewHealthHandler(cfg, "test"))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"GET /healthz", http.MethodGet, "/healthz", "", http.StatusOK},
		{"GET /status", http.MethodGet, "/status", "", http.StatusOK},
		{"POST /v1/dispatch", http.MethodPost, "/v1/dispatch", `{"type":"PING"}`, http.StatusOK},
		{"GET /v1/dispatch not allowed", http.MethodGet, "/v1/dispatch", "", http.StatusMethodNotAllowed},
		{"GET /metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"GET /unknown returns 404", http.MethodGet, "/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRegisterRoutes_MetricsDisabled(t *testing.T) {
	cfg, err := config.Default(&config.CLI{})
	if err != nil {
		t.Fatalf("config.Default() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewDispatchService(cfg, logger, nil)

	e := echo.New()
	RegisterRoutes(e, cfg, nil, NewDispatchHandler(svc, logger), NewHealthHandler(cfg, "test"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
