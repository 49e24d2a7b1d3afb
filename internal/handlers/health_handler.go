package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/farellandr/eventhub/internal/store"
)

// Health reports whether the database answers. It is served even when the
// server started without one.
func Health(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "connected"
		if s == nil {
			database = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := s.Ping(ctx); err != nil {
				requestLogger(c).WithError(err).Warn("Database ping failed")
				database = "unreachable"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"status":   "ok",
			"database": database,
			"time":     time.Now().UTC(),
		})
	}
}
