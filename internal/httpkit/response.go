// Package httpkit provides HTTP response helpers shared by the API handlers.
package httpkit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/areacheck/property-insight-service/internal/apperr"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// HandleError maps domain errors to HTTP responses. Typed *apperr.Error
// values use their Kind's status code; anything else is a 500. Returns true
// if an error was handled.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), ErrorResponse{Error: appErr.Message})
		return true
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	return true
}
