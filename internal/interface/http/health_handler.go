package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-catalog/internal/domain/repository"
	"github.com/oksasatya/library-catalog/pkg/response"
)

type HealthHandler struct {
	Store  repository.Pinger
	Logger *logrus.Logger
}

func NewHealthHandler(store repository.Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Store: store, Logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.WithError(err).Error("store ping failed")
		response.Error(c, http.StatusInternalServerError, "store unavailable", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Banner answers the root path.
func Banner(c *gin.Context) {
	c.String(http.StatusOK, "Library catalog API is running")
}
