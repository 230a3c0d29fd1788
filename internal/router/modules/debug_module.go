package modules

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/library-catalog/internal/interface/middleware"
)

// DebugModule exposes process counters. Mounted only when
// DEBUG_METRICS_ENABLED is set.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Name() string { return "debug" }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	rg.GET("/debug/auth-failures", m.authFailures)
}

// authFailures reports the rejected-request counters by reason.
func (m *DebugModule) authFailures(c *gin.Context) {
	out := make(map[string]int64, len(middleware.FailureReasons))
	for _, reason := range middleware.FailureReasons {
		out[reason] = middleware.AuthFailures(reason)
	}
	c.JSON(http.StatusOK, out)
}
