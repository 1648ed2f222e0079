package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger is any backing service that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type APIHandler struct {
	db    *gorm.DB
	cache Pinger
}

// NewAPIHandler builds the health endpoint. cache may be nil when report
// caching is disabled.
func NewAPIHandler(db *gorm.DB, cache Pinger) *APIHandler {
	return &APIHandler{db: db, cache: cache}
}

func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "database": "up", "cache": "disabled"}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "down"
	}

	if h.cache != nil {
		body["cache"] = "up"
		if err := h.cache.Ping(ctx); err != nil {
			body["cache"] = "down"
		}
	}

	c.JSON(status, body)
}
