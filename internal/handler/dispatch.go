package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"fetchjson-go/internal/action"
	"fetchjson-go/internal/fetchjson"
	"fetchjson-go/internal/service"
)

// DispatchHandler runs posted actions through the dispatch pipeline.
type DispatchHandler struct {
	service *service.DispatchService
	logger  *slog.Logger
}

// NewDispatchHandler creates a DispatchHandler.
func NewDispatchHandler(svc *service.DispatchService, logger *slog.Logger) *DispatchHandler {
	return &DispatchHandler{
		service: svc,
		logger:  logger.With("component", "dispatch_handler"),
	}
}

// Handle decodes the request body as an action, dispatches it and responds
// with the action that reached the end of the pipeline.
func (h *DispatchHandler) Handle(c echo.Context) error {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.mapError(c, err)
	}

	res, err := h.service.DispatchJSON(c.Request().Context(), data)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *DispatchHandler) mapError(c echo.Context, err error) error {
	// BodyLimit reports oversized bodies as *echo.HTTPError from Read.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, map[string]string{
			"error": http.StatusText(he.Code),
		})
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": "request body too large",
		})
	}

	if errors.Is(err, action.ErrInvalidAction) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	var serr *fetchjson.SerializationError
	if errors.As(err, &serr) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": serr.Error(),
		})
	}

	h.logger.Error("dispatch error",
		"err", err,
		"path", c.Request().URL.Path,
	)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "dispatch failed",
	})
}
