package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"btc-dashboard/internal/dashboard"
	"btc-dashboard/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	tickerCacheKey = "ticker:BTC"
	tickerCacheTTL = 90 * time.Second
)

// Session is the dashboard state owner the service drives.
type Session interface {
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
	SetTimeframe(ctx context.Context, tf domain.Timeframe) (domain.ChartSeries, error)
	OnTick(cb func(domain.TickerState)) (cancel func())
}

type LeaderboardRepository interface {
	ListTraders(ctx context.Context, side domain.TradeSide, limit int) ([]domain.Trader, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type MetricsRecorder interface {
	RecordSeries(timeframe string)
	RecordInvalidTimeframe()
}

// ChartView is a regenerated series plus its padded axis bounds.
type ChartView struct {
	Timeframe domain.Timeframe   `json:"timeframe"`
	Points    domain.ChartSeries `json:"points"`
	Min       float64            `json:"min"`
	Max       float64            `json:"max"`
	Volume    string             `json:"volume"`
}

// DashboardService is the traced facade every surface (HTTP, bot, MCP, TUI)
// reads the simulated market through.
type DashboardService struct {
	tracer           trace.Tracer
	session          Session
	repo             LeaderboardRepository
	redis            RedisClient
	metrics          MetricsRecorder
	leaderboardLimit int
}

func NewDashboardService(
	tracer trace.Tracer,
	session Session,
	repo LeaderboardRepository,
	redisClient RedisClient,
	metrics MetricsRecorder,
	leaderboardLimit int,
) *DashboardService {
	if leaderboardLimit <= 0 {
		leaderboardLimit = 5
	}
	return &DashboardService{
		tracer:           tracer,
		session:          session,
		repo:             repo,
		redis:            redisClient,
		metrics:          metrics,
		leaderboardLimit: leaderboardLimit,
	}
}

// GetTicker returns the latest ticker. The local session and the shared Redis
// snapshot are both consulted and the one with the newer LastUpdate wins, so a
// stale cache never masks a live session.
func (s *DashboardService) GetTicker(ctx context.Context) (*domain.TickerSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard-service.get-ticker")
	defer span.End()

	var cached *domain.TickerSnapshot
	if s.redis != nil {
		var err error
		cached, err = s.getTickerCache(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("redis ticker read failed")
		}
	}

	if s.session == nil {
		if cached != nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
		return nil, errors.New("no ticker available")
	}
	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		if cached != nil {
			log.Warn().Err(err).Msg("session snapshot failed, serving cached ticker")
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
		span.RecordError(err)
		return nil, err
	}
	local := domain.NewTickerSnapshot(snap.Ticker)
	if cached != nil && cached.LastUpdate.After(local.LastUpdate) {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))
	return &local, nil
}

// PublishTicker stores state as the shared ticker snapshot.
func (s *DashboardService) PublishTicker(ctx context.Context, state domain.TickerState) error {
	if s.redis == nil {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "dashboard-service.publish-ticker")
	defer span.End()

	data, err := json.Marshal(domain.NewTickerSnapshot(state))
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, tickerCacheKey, data, tickerCacheTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("cache ticker: %w", err)
	}
	return nil
}

// GetChart parses timeframe and regenerates the session's series for it.
// Unknown values fail with domain.ErrInvalidTimeframe.
func (s *DashboardService) GetChart(ctx context.Context, timeframe string) (*ChartView, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard-service.get-chart")
	defer span.End()
	span.SetAttributes(attribute.String("timeframe", timeframe))

	tf, err := domain.ParseTimeframe(timeframe)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordInvalidTimeframe()
		}
		return nil, err
	}

	series, err := s.session.SetTimeframe(ctx, tf)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSeries(string(tf))
	}

	lo, hi := series.Bounds(domain.AxisPadding)
	return &ChartView{
		Timeframe: tf,
		Points:    series,
		Min:       lo,
		Max:       hi,
		Volume:    domain.DefaultVolume.For(tf),
	}, nil
}

// GetLeaderboard returns the top buyers and sellers. Without a repository, or
// when it fails or is empty, the built-in lists are served.
func (s *DashboardService) GetLeaderboard(ctx context.Context) (domain.Leaderboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard-service.get-leaderboard")
	defer span.End()

	fallback := domain.DefaultLeaderboard(s.leaderboardLimit)
	if s.repo == nil {
		return fallback, nil
	}

	buyers, err := s.repo.ListTraders(ctx, domain.SideBuy, s.leaderboardLimit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard buyers query failed, serving built-in list")
		return fallback, nil
	}
	sellers, err := s.repo.ListTraders(ctx, domain.SideSell, s.leaderboardLimit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard sellers query failed, serving built-in list")
		return fallback, nil
	}
	if len(buyers) == 0 && len(sellers) == 0 {
		return fallback, nil
	}
	return domain.Leaderboard{Buyers: buyers, Sellers: sellers}, nil
}

func (s *DashboardService) GetVolume() domain.TradingVolume {
	return domain.DefaultVolume
}

// Subscribe forwards session ticks to cb until cancel is called.
func (s *DashboardService) Subscribe(cb func(domain.TickerState)) (cancel func()) {
	if s.session == nil {
		return func() {}
	}
	return s.session.OnTick(cb)
}

func (s *DashboardService) getTickerCache(ctx context.Context) (*domain.TickerSnapshot, error) {
	data, err := s.redis.Get(ctx, tickerCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.TickerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
