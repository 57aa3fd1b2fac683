package handler

import (
	"context"

	"btc-dashboard/internal/domain"
	"btc-dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Dashboard is what the HTTP surface reads from; *service.DashboardService
// implements it.
type Dashboard interface {
	GetTicker(ctx context.Context) (*domain.TickerSnapshot, error)
	GetChart(ctx context.Context, timeframe string) (*service.ChartView, error)
	GetLeaderboard(ctx context.Context) (domain.Leaderboard, error)
	GetVolume() domain.TradingVolume
	Subscribe(cb func(domain.TickerState)) (cancel func())
}

type Handler struct {
	tracer         trace.Tracer
	dashboard      Dashboard
	apiKey         string
	chartRateLimit int
}

// New builds the HTTP handlers. chartRateLimit is the per-client chart
// regenerations allowed per minute; zero disables the limit.
func New(tracer trace.Tracer, dashboard Dashboard, apiKey string, chartRateLimit int) *Handler {
	return &Handler{
		tracer:         tracer,
		dashboard:      dashboard,
		apiKey:         apiKey,
		chartRateLimit: chartRateLimit,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(h.apiKey))
	api.GET("/ticker", h.GetTicker)
	api.GET("/ticker/stream", h.StreamTicker)
	api.GET("/chart", RateLimit(h.chartRateLimit), h.GetChart)
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/volume", h.GetVolume)
}
