package middleware

import (
	"errors"
	"net/http"

	"shopPulse/pkg/logger"

	jsonres "shopPulse/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the echo HTTPErrorHandler. Handlers write their own error
// bodies; this catches what escapes them (404s, panics recovered by echo,
// bind failures on routes without a handler).
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("unhandled request error", "path", c.Path(), "error", err)
	}

	if writeErr := c.JSON(code, jsonres.Error(http.StatusText(code), message, nil)); writeErr != nil {
		logger.Error("failed to write error response", "error", writeErr)
	}
}
