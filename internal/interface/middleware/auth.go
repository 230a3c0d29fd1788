package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-catalog/internal/application"
	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/pkg/response"
)

// CtxUserKey is the gin context key holding the authenticated *entity.User.
const CtxUserKey = "authUser"

type userCtxKey struct{}

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// Authenticate is the first gate: it requires a valid bearer token whose
// subject still exists and attaches that user to the request.
func Authenticate(auth Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			reason, known := failureReason(err)
			if !known {
				logger.WithError(err).WithField("request_id", c.GetString(CtxRequestIDKey)).Error("authenticate failed")
				response.Error(c, http.StatusInternalServerError, "internal server error", nil)
				return
			}
			rejectUnauthorized(c, logger, reason)
			return
		}

		c.Set(CtxUserKey, u)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userCtxKey{}, u))
		c.Next()
	}
}

// RequireAdmin is the second gate and must run after Authenticate.
func RequireAdmin(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			rejectUnauthorized(c, logger, reasonMissingToken)
			return
		}
		if !u.IsAdmin() {
			authFailures.Add(reasonForbidden, 1)
			logger.WithFields(logrus.Fields{
				"reason":     reasonForbidden,
				"user_id":    u.ID,
				"path":       c.FullPath(),
				"request_id": c.GetString(CtxRequestIDKey),
			}).Warn("admin gate rejected request")
			response.Error(c, http.StatusForbidden, "Access denied. Admin only.", nil)
			return
		}
		c.Next()
	}
}

// Chain returns the gates followed by the handler, in order.
func Chain(handlers ...gin.HandlerFunc) gin.HandlersChain {
	return gin.HandlersChain(handlers)
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

// UserFromContext returns the user attached by Authenticate to a request context.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*entity.User)
	return u, ok && u != nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func failureReason(err error) (string, bool) {
	switch {
	case errors.Is(err, application.ErrMissingToken):
		return reasonMissingToken, true
	case errors.Is(err, application.ErrTokenExpired):
		return reasonTokenExpired, true
	case errors.Is(err, application.ErrInvalidToken):
		return reasonInvalidToken, true
	case errors.Is(err, application.ErrUserNotFound):
		return reasonUserNotFound, true
	default:
		return "", false
	}
}

func rejectUnauthorized(c *gin.Context, logger *logrus.Logger, reason string) {
	authFailures.Add(reason, 1)
	logger.WithFields(logrus.Fields{
		"reason":     reason,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString(CtxRequestIDKey),
	}).Warn("authentication rejected")
	response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
}
