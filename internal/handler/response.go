package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"voicebridge/internal/logger"
	"voicebridge/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeServiceError maps service errors to responses. Provider and storage
// details are logged, never returned.
func writeServiceError(c echo.Context, err error) error {
	var validationErr *service.ValidationError
	var stageErr *service.StageError

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: validationErr.Reason})
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "announcement not found"})
	case errors.As(err, &stageErr):
		status := http.StatusInternalServerError
		if stageErr.IsProviderStage() {
			status = http.StatusBadGateway
		}
		logger.Error("request failed",
			"module", "handler", "action", "request", "resource", "announcement", "result", "failed",
			"stage", stageErr.Stage, "language", stageErr.Language, "status_code", status, "error", err)
		return c.JSON(status, errorResponse{Error: stageErr.Message()})
	default:
		logger.Error("request failed",
			"module", "handler", "action", "request", "resource", "announcement", "result", "failed",
			"error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}
