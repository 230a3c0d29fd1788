package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/library-catalog/internal/interface/http"
	"github.com/oksasatya/library-catalog/internal/interface/middleware"
)

// UserModule lets admins change roles: PATCH /api/users/:id/role
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    middleware.Authenticator
	Logger  *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, auth middleware.Authenticator, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Logger: logger}
}

func (m *UserModule) Name() string { return "users" }

func (m *UserModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/users")
	admin.Use(middleware.Authenticate(m.Auth, m.Logger), middleware.RequireAdmin(m.Logger))
	{
		admin.PATCH("/:id/role", m.Handler.AssignRole)
	}
}
