package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/library-catalog/internal/interface/http"
	"github.com/oksasatya/library-catalog/internal/interface/middleware"
)

// BookModule serves the catalog. Reads are public, writes are admin only.
type BookModule struct {
	Handler *handlers.BookHandler
	Auth    middleware.Authenticator
	Logger  *logrus.Logger
}

func NewBookModule(h *handlers.BookHandler, auth middleware.Authenticator, logger *logrus.Logger) *BookModule {
	return &BookModule{Handler: h, Auth: auth, Logger: logger}
}

func (m *BookModule) Name() string { return "books" }

func (m *BookModule) Register(rg *gin.RouterGroup) {
	books := rg.Group("/books")
	books.GET("", m.Handler.List)
	books.GET("/search", m.Handler.Search)
	books.GET("/:id", m.Handler.Get)

	authn := middleware.Authenticate(m.Auth, m.Logger)
	admin := middleware.RequireAdmin(m.Logger)
	books.POST("", middleware.Chain(authn, admin, m.Handler.Create)...)
	books.PUT("/:id", middleware.Chain(authn, admin, m.Handler.Update)...)
	books.DELETE("/:id", middleware.Chain(authn, admin, m.Handler.Delete)...)
	books.POST("/:id/cover", middleware.Chain(authn, admin, m.Handler.UploadCover)...)
}
