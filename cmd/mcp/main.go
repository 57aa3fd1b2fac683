package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"btc-dashboard/internal/cache"
	"btc-dashboard/internal/config"
	"btc-dashboard/internal/dashboard"
	"btc-dashboard/internal/db"
	"btc-dashboard/internal/domain"
	"btc-dashboard/internal/repository"
	"btc-dashboard/internal/service"
	"btc-dashboard/pkg/logger"
	"btc-dashboard/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const serverVersion = "0.3.0"

// Dashboard is the read side the MCP tools expose.
type Dashboard interface {
	GetTicker(ctx context.Context) (*domain.TickerSnapshot, error)
	GetChart(ctx context.Context, timeframe string) (*service.ChartView, error)
	GetLeaderboard(ctx context.Context) (domain.Leaderboard, error)
}

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initLoggerFunc   = logger.Init
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newSessionFunc   = func(cfg *config.Config) (*dashboard.Session, error) {
		return dashboard.New(
			dashboard.WithInterval(cfg.TickInterval),
			dashboard.WithInitialPrice(cfg.InitialPrice),
			dashboard.WithTimeframe(cfg.DefaultTimeframe),
		)
	}
	runServerFunc = func(ctx context.Context, server *mcp.Server, cfg *config.Config) error {
		if cfg.MCPTransport == "http" {
			return serveHTTP(ctx, server, fmt.Sprintf(":%d", cfg.HTTPPort))
		}
		return server.Run(ctx, &mcp.StdioTransport{})
	}
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	if err := initLoggerFunc(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Warn().Err(err).Msg("invalid log settings, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.TracingEndpoint,
		SampleRatio: cfg.TracingSampleRatio,
		Component:   "mcp",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	var redisClient service.RedisClient
	if cfg.RedisURL != "" {
		client, err := initRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using the local ticker")
		} else {
			defer client.Close()
			redisClient = client
		}
	}

	var leaderboardRepo service.LeaderboardRepository
	if pool, err := initPostgresFunc(ctx, cfg.DatabaseURL); err == nil {
		defer pool.Close()
		leaderboardRepo = repository.NewLeaderboardRepository(pool, tracer)
	} else if !errors.Is(err, db.ErrNoDatabase) {
		log.Warn().Err(err).Msg("postgres unavailable, serving built-in leaderboard")
	}

	session, err := newSessionFunc(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dashboard session")
	}
	if err := session.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start dashboard session")
	}
	defer session.Close()

	svc := service.NewDashboardService(tracer, session, leaderboardRepo, redisClient, nil, cfg.LeaderboardLimit)
	server := newMCPServer(svc)

	log.Info().Str("transport", cfg.MCPTransport).Msg("MCP server starting")
	if err := runServerFunc(ctx, server, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("MCP server stopped")
	}
	log.Info().Msg("MCP server exited")
}

func newMCPServer(dash Dashboard) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "btc-dashboard", Version: serverVersion}, nil)
	t := &tools{dashboard: dash}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_ticker",
		Description: "Current simulated BTC/USD price with the last tick's delta.",
	}, t.getTicker)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_chart",
		Description: "Regenerate the simulated price series for a timeframe (day, week or month).",
	}, t.getChart)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_leaderboard",
		Description: "Top buyers and sellers.",
	}, t.getLeaderboard)

	return server
}

func serveHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("MCP streamable HTTP listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
