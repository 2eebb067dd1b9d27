package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusFunc reports the roster load status and, when failed, why.
type StatusFunc func() (status string, loadErr string)

type HealthHandler struct {
	status StatusFunc
}

func NewHealthHandler(status StatusFunc) *HealthHandler {
	return &HealthHandler{status: status}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz is ready only once the startup load has succeeded.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	status, loadErr := h.status()

	if status != "ready" {
		body := gin.H{"status": status}
		if loadErr != "" {
			body["error"] = loadErr
		}
		ctx.JSON(http.StatusServiceUnavailable, body)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
