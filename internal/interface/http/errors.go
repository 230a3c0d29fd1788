package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-catalog/internal/application"
	"github.com/oksasatya/library-catalog/internal/interface/middleware"
	"github.com/oksasatya/library-catalog/pkg/response"
)

const msgInternal = "internal server error"

// writeError maps service errors onto status codes and client messages.
// Unknown errors are logged and never leak to the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		var details map[string]string
		if len(ve.Fields) > 0 {
			details = ve.Fields
		}
		response.Error(c, http.StatusBadRequest, ve.Message, details)
	case errors.Is(err, application.ErrDuplicateEmail):
		response.Error(c, http.StatusBadRequest, "Email already registered", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, application.ErrMissingToken),
		errors.Is(err, application.ErrInvalidToken),
		errors.Is(err, application.ErrTokenExpired),
		errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error(c, http.StatusForbidden, "Access denied. Admin only.", nil)
	case errors.Is(err, application.ErrBookNotFound):
		response.Error(c, http.StatusNotFound, "Book not found", nil)
	case errors.Is(err, application.ErrNoSuchUser):
		response.Error(c, http.StatusNotFound, "User not found", nil)
	case errors.Is(err, application.ErrCoverStorageOff):
		response.Error(c, http.StatusInternalServerError, "cover storage not configured", nil)
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(middleware.CtxRequestIDKey),
		}).Error("request failed")
		response.Error(c, http.StatusInternalServerError, msgInternal, nil)
	}
}

func invalidBody(c *gin.Context, message string, details map[string]string) {
	response.Error(c, http.StatusBadRequest, message, details)
}
