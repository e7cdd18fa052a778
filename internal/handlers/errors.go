package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/gin-gonic/gin"
)

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// writeServiceError maps service sentinel errors to HTTP responses
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRunNotFound),
		errors.Is(err, services.ErrBreakNotFound),
		errors.Is(err, services.ErrBasketNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidResolution),
		errors.Is(err, services.ErrInvalidCause),
		errors.Is(err, services.ErrInvalidTolerance),
		errors.Is(err, services.ErrInvalidMode),
		errors.Is(err, services.ErrInvalidHorizon),
		errors.Is(err, services.ErrNoSelection):
		badRequest(c, err.Error())
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
