package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/kbase/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// returns the server health status. db may be nil.
func Handler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{
			Status:  "healthy",
			Service: serviceName,
			Version: Version,
		}

		if db == nil {
			c.JSON(http.StatusOK, resp)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("health check: database unreachable", "error", err)

			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}

		resp.Database = "ok"
		c.JSON(http.StatusOK, resp)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
