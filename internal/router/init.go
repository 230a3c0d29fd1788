package router

import (
	"github.com/oksasatya/library-catalog/internal/container"
	handlers "github.com/oksasatya/library-catalog/internal/interface/http"
	"github.com/oksasatya/library-catalog/internal/router/modules"
)

// InitModules builds every feature module from the container and adds it to
// the registry. Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	logger := c.Logger
	auth := c.AuthService

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(auth, logger), auth, logger))
	r.Add(modules.NewBookModule(handlers.NewBookHandler(c.BookService, logger), auth, logger))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(auth, logger), auth, logger))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(c.Store, logger)))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
