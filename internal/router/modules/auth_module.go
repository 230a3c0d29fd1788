package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/library-catalog/internal/interface/http"
	"github.com/oksasatya/library-catalog/internal/interface/middleware"
)

// AuthModule serves registration, login and token verification.
// Public: POST /api/auth/register, POST /api/auth/login
// Protected: GET /api/auth/verify
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    middleware.Authenticator
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, auth middleware.Authenticator, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth, Logger: logger}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/login", m.Handler.Login)
	rg.GET("/auth/verify", middleware.Authenticate(m.Auth, m.Logger), m.Handler.Verify)
}
