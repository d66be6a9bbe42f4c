// Package service runs actions through the configured dispatch pipeline.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"fetchjson-go/internal/action"
	"fetchjson-go/internal/config"
	"fetchjson-go/internal/dispatch"
	"fetchjson-go/internal/fetchjson"
	"fetchjson-go/internal/metrics"
	"fetchjson-go/internal/middleware"
	"fetchjson-go/internal/model"
)

// DispatchService owns the pipeline and the wire codec for its fetch marker.
type DispatchService struct {
	pipeline dispatch.HandlerFunc
	codec    action.Codec
	logger   *slog.Logger
}

// NewDispatchService builds the pipeline described by cfg:
// logging, metrics (when m is non-nil), then the JSON body encoder when
// enabled. The final stage returns the action it receives; nothing is
// fetched.
func NewDispatchService(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *DispatchService {
	logger = logger.With("component", "dispatch_service")
	fetchType := cfg.Pipeline.FetchType

	mws := []dispatch.MiddlewareFunc{middleware.ActionLogger(logger)}
	if m != nil {
		mws = append(mws, middleware.ActionMetrics(m, fetchType))
	}
	if cfg.Pipeline.EncoderEnabled() {
		mws = append(mws, fetchjson.EncodeJSON(fetchjson.WithActionType(fetchType)))
	}

	return &DispatchService{
		pipeline: dispatch.Chain(sink, mws...),
		codec:    action.NewCodec(fetchType),
		logger:   logger,
	}
}

// sink ends the pipeline by handing back the action it received.
func sink(_ context.Context, a *action.Action) (any, error) {
	return a, nil
}

// Codec returns the wire codec matching the pipeline's fetch marker.
func (s *DispatchService) Codec() action.Codec {
	return s.codec
}

// Dispatch runs a through the pipeline. A body that cannot be encoded is
// reported as a *fetchjson.SerializationError.
func (s *DispatchService) Dispatch(ctx context.Context, a *action.Action) (*model.DispatchResult, error) {
	res, err := s.pipeline(ctx, a)
	if err != nil {
		return nil, err
	}

	out, ok := res.(*action.Action)
	if !ok {
		return nil, fmt.Errorf("dispatch: pipeline returned %T, want *action.Action", res)
	}
	return &model.DispatchResult{Action: out, Rewritten: out != a}, nil
}

// DispatchJSON decodes data as an action and dispatches it.
func (s *DispatchService) DispatchJSON(ctx context.Context, data []byte) (*model.DispatchResult, error) {
	a, err := s.codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, a)
}
