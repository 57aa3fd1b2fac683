package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard godoc
// @Summary      Top buyers and sellers
// @Tags         leaderboard
// @Produce      json
// @Success      200  {object}  domain.Leaderboard
// @Security     ApiKeyAuth
// @Router       /api/leaderboard [get]
func (h *Handler) GetLeaderboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-leaderboard")
	defer span.End()

	lb, err := h.dashboard.GetLeaderboard(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lb)
}

// GetVolume godoc
// @Summary      Trading volume per timeframe
// @Tags         leaderboard
// @Produce      json
// @Success      200  {object}  domain.TradingVolume
// @Security     ApiKeyAuth
// @Router       /api/volume [get]
func (h *Handler) GetVolume(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.GetVolume())
}
