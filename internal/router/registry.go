package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Registry collects modules and mounts them on the /api group in the order
// they were added.
type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	Logger  *logrus.Logger
	modules []Module
}

func NewRegistry(engine *gin.Engine, logger *logrus.Logger) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api"), Logger: logger}
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll mounts every module and returns the number of routes on the
// engine.
func (r *Registry) RegisterAll() int {
	for _, m := range r.modules {
		m.Register(r.API)
	}
	routes := r.Engine.Routes()
	if r.Logger != nil {
		names := make([]string, 0, len(r.modules))
		for _, m := range r.modules {
			names = append(names, m.Name())
		}
		r.Logger.WithFields(logrus.Fields{"modules": names, "routes": len(routes)}).Debug("routes registered")
	}
	return len(routes)
}
