package serviceutils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/epms/internal/domain"
	"github.com/locvowork/epms/internal/logger"
)

// APIResponse is the JSON envelope of every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResponseSuccess writes a success envelope.
func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ResponseError writes a failure envelope. Server errors are logged with the
// request context.
func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := APIResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		if status >= http.StatusInternalServerError {
			logger.ErrorLog(c.Request().Context(), "%s: %v", message, err)
		}
	}
	return c.JSON(status, resp)
}

// StatusFromError maps domain errors to HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ResponseDomainError writes a failure envelope whose status follows err.
func ResponseDomainError(c echo.Context, message string, err error) error {
	return ResponseError(c, StatusFromError(err), message, err)
}
