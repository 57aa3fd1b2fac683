package handler

import (
	"net/http"

	"btc-dashboard/internal/domain"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "symbol": domain.Symbol})
}
