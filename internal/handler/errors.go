package handler

import (
	"errors"
	"net/http"

	"document-memory-backend/internal/auth"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps the service error taxonomy onto HTTP status codes.
// Unclassified errors are logged and reported as a bare 500 so internal
// detail never reaches clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrForbidden):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrConflict):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		logrus.WithError(err).Error("Unhandled request error")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
