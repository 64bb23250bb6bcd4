package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/pkg/response"
)

// writeError maps domain errors onto HTTP status codes
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, models.ErrInvalidArgument), arena.IsConfigError(err):
		response.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c, "internal server error")
	}
}
