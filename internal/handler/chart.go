package handler

import (
	"errors"
	"net/http"

	"btc-dashboard/internal/dashboard"
	"btc-dashboard/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetChart godoc
// @Summary      Regenerate the price chart
// @Description  Selects a timeframe and returns a freshly generated series with padded axis bounds
// @Tags         chart
// @Produce      json
// @Param        timeframe  query  string  false  "Timeframe (day, week, month)"  default(day)
// @Success      200  {object}  service.ChartView
// @Failure      400  {object}  map[string]interface{}
// @Security     ApiKeyAuth
// @Router       /api/chart [get]
func (h *Handler) GetChart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-chart")
	defer span.End()

	timeframe := c.DefaultQuery("timeframe", string(domain.TimeframeDay))
	span.SetAttributes(attribute.String("timeframe", timeframe))

	view, err := h.dashboard.GetChart(ctx, timeframe)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTimeframe):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                err.Error(),
			"supported_timeframes": domain.SupportedTimeframes,
		})
	case errors.Is(err, dashboard.ErrSessionClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
