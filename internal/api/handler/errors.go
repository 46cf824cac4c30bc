package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/evently/internal/api/dto"
	"github.com/martijn/evently/internal/core/domain"
)

// writeError maps a service error to its HTTP status. Anything unrecognised
// is a persistence failure: the client gets a generic message and the detail
// goes to the log.
func writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: verr.Error(),
			Code:    http.StatusBadRequest,
			Errors:  verr.Violations,
		})
	case errors.Is(err, domain.ErrDuplicate):
		respond(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, domain.ErrUnauthenticated):
		respond(c, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, domain.ErrForbidden):
		respond(c, http.StatusForbidden, "You are not the organizer of this event")
	case errors.Is(err, domain.ErrNotFound):
		respond(c, http.StatusNotFound, "Event not found")
	default:
		slog.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		respond(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func respond(c *gin.Context, status int, message string) {
	c.JSON(status, dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

func badRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, message)
}
