package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTicker godoc
// @Summary      Get the simulated BTC/USD ticker
// @Description  Returns the current simulated price, the last tick delta and its percentage
// @Tags         ticker
// @Produce      json
// @Success      200  {object}  domain.TickerSnapshot
// @Failure      503  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/ticker [get]
func (h *Handler) GetTicker(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ticker")
	defer span.End()

	ticker, err := h.dashboard.GetTicker(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticker)
}
