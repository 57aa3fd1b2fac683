package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"btc-dashboard/internal/bot"
	"btc-dashboard/internal/cache"
	"btc-dashboard/internal/config"
	"btc-dashboard/internal/dashboard"
	"btc-dashboard/internal/db"
	"btc-dashboard/internal/handler"
	"btc-dashboard/internal/job"
	"btc-dashboard/internal/repository"
	"btc-dashboard/internal/service"
	"btc-dashboard/pkg/logger"
	"btc-dashboard/pkg/metrics"
	"btc-dashboard/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "btc-dashboard/docs"
)

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
	startPublisherFunc     = func(p *job.TickerPublisher, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = func(token string, dash bot.Dashboard) error { return bot.StartTelegramBot(token, dash) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           BTC Dashboard API
// @version         1.0
// @description     Simulated BTC/USD ticker, chart series and trader leaderboard.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	if err := initLoggerFunc(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Warn().Err(err).Msg("invalid log settings, using defaults")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.TracingEndpoint,
		SampleRatio: cfg.TracingSampleRatio,
		Component:   "server",
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
			log.Warn().Err(err).Msg("redis unavailable, ticker snapshots stay local")
		} else {
			defer client.Close()
			redisClient = client
		}
	}

	var leaderboardRepo service.LeaderboardRepository
	pool, err := initPostgresFunc(ctx, cfg.DatabaseURL)
	switch {
	case err == nil:
		defer pool.Close()
		leaderboardRepo = repository.NewLeaderboardRepository(pool, tracer)
	case errors.Is(err, db.ErrNoDatabase):
		log.Info().Msg("DATABASE_URL not set, serving built-in leaderboard")
	default:
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

	recorder := metrics.New(prometheus.NewRegistry())
	dashboardService := service.NewDashboardService(tracer, session, leaderboardRepo, redisClient, recorder, cfg.LeaderboardLimit)

	startPublisherFunc(job.NewTickerPublisher(tracer, dashboardService, recorder), ctx)

	if err := startTelegramBotFunc(cfg.TelegramBotToken, dashboardService); err != nil {
		log.Error().Err(err).Msg("telegram bot disabled")
	}

	h := handler.New(tracer, dashboardService, cfg.APIKey, cfg.ChartRateLimit)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("btc-dashboard"))

	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(recorder.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
