package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	status := gin.H{"status": "ok", "time": time.Now().Unix()}

	if h.health != nil {
		ctx, cancel := h.requestContext(c)
		defer cancel()

		if err := h.health.Ping(ctx); err != nil {
			h.log.WithError(err).Warn("database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		status["database"] = "ok"
	}

	c.JSON(http.StatusOK, status)
}
