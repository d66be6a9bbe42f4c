package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"fetchjson-go/internal/config"
	"fetchjson-go/internal/handler"
	"fetchjson-go/internal/metrics"
	"fetchjson-go/internal/middleware"
	"fetchjson-go/internal/service"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("fetchjson"),
		kong.Description("Dispatch pipeline that encodes JSON fetch bodies."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	switch cmd := ctx.Command(); {
	case cmd == "serve":
		serve(&cli)
	case strings.HasPrefix(cmd, "encode"):
		ctx.FatalIfErrorf(encode(&cli, os.Stdin, os.Stdout))
	default:
		ctx.Fatalf("unknown command %q", cmd)
	}
}

func serve(cli *config.CLI) {
	fx.New(
		fx.Provide(
			func() *config.CLI { return cli },
			func() handler.Version { return handler.Version(version) },
			config.Load,
			newLogger,
			metrics.New,
			newEcho,
			service.NewDispatchService,
			handler.NewDispatchHandler,
			handler.NewHealthHandler,
		),
		fx.Invoke(handler.RegisterRoutes, warnConfigPermissions, startServer),
	).Run()
}

// encode runs one action through the pipeline and prints the result.
// A missing config file is not an error here; built-in defaults apply.
func encode(cli *config.CLI, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(cli)
	if errors.Is(err, config.ErrNoConfig) {
		cfg, err = config.Default(cli)
	}
	if err != nil {
		return err
	}

	in := stdin
	if cli.Encode.File != "" {
		f, err := os.Open(cli.Encode.File)
		if err != nil {
			return fmt.Errorf("open %s: %w", cli.Encode.File, err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read action: %w", err)
	}

	svc := service.NewDispatchService(cfg, buildLogger(cfg, os.Stderr), nil)
	res, err := svc.DispatchJSON(context.Background(), data)
	if err != nil {
		return err
	}

	out, err := svc.Codec().Encode(res.Action)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}
	if cli.Encode.Indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return fmt.Errorf("indent action: %w", err)
		}
		out = buf.Bytes()
	}
	_, err = fmt.Fprintf(stdout, "%s\n", out)
	return err
}

func newLogger(cfg *config.Config) *slog.Logger {
	return buildLogger(cfg, os.Stdout)
}

func buildLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}

func newEcho(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Inbound timeouts to mitigate slow-client attacks.
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 120 * time.Second
	e.Server.ReadHeaderTimeout = 10 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	if cfg.Metrics.Enabled {
		e.Use(middleware.MetricsMiddleware(m))
	}
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dB", cfg.Server.BodyMaxBytes)))
	e.Use(middleware.SecurityHeaders())

	if cfg.Server.RateLimit.Enabled {
		e.Use(middleware.RateLimiter(cfg.Server.RateLimit.RequestsPerSecond))
		logger.Info("rate limiter enabled", "rps", cfg.Server.RateLimit.RequestsPerSecond)
	}

	return e
}

func warnConfigPermissions(cfg *config.Config, logger *slog.Logger) {
	cfg.WarnPermissions(logger)
}

func startServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			addr := cfg.Server.Addr()
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("bind %s: %w", addr, err)
			}
			logger.Info("starting server",
				"addr", addr,
				"fetch_type", cfg.Pipeline.FetchType,
				"encode_json", cfg.Pipeline.EncoderEnabled(),
			)
			go func() {
				if err := e.Server.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return e.Shutdown(ctx)
		},
	})
}
