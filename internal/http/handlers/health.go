package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	now func() time.Time
}

func NewHealthHandler() *HealthHandler { return &HealthHandler{now: time.Now} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "operational",
		"service":   "Story Grid Pro",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
