package handler

import (
	"errors"
	"net/http"

	"freelance-app/internal/models"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP status codes and the
// { "message": ... } envelope the frontend expects.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), gin.H{"message": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
