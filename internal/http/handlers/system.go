package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler exposes liveness and database checks.
type SystemHandler struct {
	DB *sql.DB
}

func (h SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "busbenin",
	})
}

func (h SystemHandler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		RespondError(c, http.StatusServiceUnavailable, "base de données non configurée", nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "base de données injoignable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"database": "ok"})
}
