package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wastezero-realtime/middlewares"
	"github.com/yeremiapane/wastezero-realtime/services"
	"github.com/yeremiapane/wastezero-realtime/utils"
)

var errInternal = errors.New("internal server error")

// respondServiceError maps service error kinds to status codes. Anything that
// is not a service error is logged and reported as a 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middlewares.ContextUserID)
}
