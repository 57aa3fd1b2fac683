package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"btc-dashboard/internal/config"
	"btc-dashboard/internal/dashboard"
	"btc-dashboard/internal/db"
	"btc-dashboard/internal/domain"
	"btc-dashboard/internal/repository"
	"btc-dashboard/internal/service"
	"btc-dashboard/internal/tui"
	"btc-dashboard/pkg/logger"
	"btc-dashboard/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	gossh "golang.org/x/crypto/ssh"
)

// ctxKey is a typed context key to avoid collisions.
type ctxKey string

const fingerprintKey ctxKey = "ssh_fingerprint"

// LeaderboardSource supplies the trader panels shown to every connection.
type LeaderboardSource interface {
	GetLeaderboard(ctx context.Context) (domain.Leaderboard, error)
	GetVolume() domain.TradingVolume
}

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initLoggerFunc   = logger.Init
	initPostgresFunc = db.InitPostgres
	initTracerFunc   = tracing.InitTracer
	newSessionFunc   = func(cfg *config.Config) (*dashboard.Session, error) {
		return dashboard.New(
			dashboard.WithInterval(cfg.TickInterval),
			dashboard.WithInitialPrice(cfg.InitialPrice),
			dashboard.WithTimeframe(cfg.DefaultTimeframe),
		)
	}
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

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
		Component:   "ssh",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	var leaderboardRepo service.LeaderboardRepository
	pool, err := initPostgresFunc(ctx, cfg.DatabaseURL)
	switch {
	case err == nil:
		defer pool.Close()
		leaderboardRepo = repository.NewLeaderboardRepository(pool, tracer)
	case errors.Is(err, db.ErrNoDatabase):
	default:
		log.Warn().Err(err).Msg("postgres unavailable, serving built-in leaderboard")
	}

	// Sessions are per connection; the shared service only serves the
	// leaderboard panels.
	board := service.NewDashboardService(tracer, nil, leaderboardRepo, nil, nil, cfg.LeaderboardLimit)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			ctx.SetValue(fingerprintKey, fingerprint)
			log.Info().Str("user", ctx.User()).Str("fingerprint", fingerprint).Msg("SSH auth accepted")
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				pty, _, _ := s.Pty()
				model, err := newDashboardModel(s.Context(), cfg, board, s.User(), pty.Window.Width, pty.Window.Height)
				if err != nil {
					log.Error().Err(err).Str("user", s.User()).Msg("failed to start dashboard session")
					wish.Fatalln(s, "dashboard unavailable")
					return nil, nil
				}
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create SSH server")
	}

	if srv != nil {
		go func() {
			log.Info().Str("addr", addr).Msg("SSH server listening")
			if err := srv.ListenAndServe(); err != nil {
				log.Info().Err(err).Msg("SSH server stopped")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("SSH server shutdown error")
		}
	}

	log.Info().Msg("SSH server exited")
}

// newDashboardModel starts a dashboard session bound to connCtx. The session
// and its timer are released when the connection context ends.
func newDashboardModel(
	connCtx context.Context,
	cfg *config.Config,
	board LeaderboardSource,
	username string,
	width, height int,
) (*tui.Model, error) {
	session, err := newSessionFunc(cfg)
	if err != nil {
		return nil, err
	}
	if err := session.Start(connCtx); err != nil {
		session.Close()
		return nil, err
	}
	go func() {
		<-connCtx.Done()
		session.Close()
	}()

	lookupCtx, cancel := context.WithTimeout(connCtx, 2*time.Second)
	defer cancel()
	leaderboard, err := board.GetLeaderboard(lookupCtx)
	if err != nil {
		leaderboard = domain.DefaultLeaderboard(cfg.LeaderboardLimit)
	}

	model := tui.NewModel(session, leaderboard, board.GetVolume(), username)
	model.SetSize(width, height)
	return model, nil
}
