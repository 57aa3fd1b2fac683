package main

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"btc-dashboard/internal/config"
	"btc-dashboard/internal/dashboard"
	"btc-dashboard/internal/domain"
	"btc-dashboard/internal/service"
	"btc-dashboard/pkg/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type stubDashboard struct {
	tickerErr error
}

func (s stubDashboard) GetTicker(ctx context.Context) (*domain.TickerSnapshot, error) {
	if s.tickerErr != nil {
		return nil, s.tickerErr
	}
	return &domain.TickerSnapshot{
		Symbol:       domain.Symbol,
		CurrentPrice: 45305.5,
		LastDelta:    25,
		LastUpdate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (s stubDashboard) GetChart(ctx context.Context, timeframe string) (*service.ChartView, error) {
	tf, err := domain.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	points := make(domain.ChartSeries, tf.SampleCount())
	for i := range points {
		points[i] = domain.PricePoint{Label: tf.Label(i), Price: domain.BasePrice}
	}
	return &service.ChartView{Timeframe: tf, Points: points, Min: 44500, Max: 45500}, nil
}

func (s stubDashboard) GetLeaderboard(ctx context.Context) (domain.Leaderboard, error) {
	return domain.DefaultLeaderboard(3), nil
}

func TestGetTickerTool(t *testing.T) {
	tl := &tools{dashboard: stubDashboard{}}
	_, out, err := tl.getTicker(context.Background(), nil, emptyInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Symbol != "BTC/USD" || out.Price != 45305.5 || out.Delta != 25 {
		t.Fatalf("unexpected output %+v", out)
	}
	if out.LastUpdate != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected timestamp %q", out.LastUpdate)
	}

	tl.dashboard = stubDashboard{tickerErr: dashboard.ErrSessionClosed}
	if _, _, err := tl.getTicker(context.Background(), nil, emptyInput{}); !errors.Is(err, dashboard.ErrSessionClosed) {
		t.Fatalf("expected session closed error, got %v", err)
	}
}

func TestGetChartTool(t *testing.T) {
	tl := &tools{dashboard: stubDashboard{}}

	_, out, err := tl.getChart(context.Background(), nil, chartInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Timeframe != "day" || len(out.Points) != 24 {
		t.Fatalf("empty timeframe should default to day, got %s/%d", out.Timeframe, len(out.Points))
	}

	_, out, err = tl.getChart(context.Background(), nil, chartInput{Timeframe: "month"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Points) != 30 || out.Points[29].Label != "30" {
		t.Fatalf("unexpected month output %+v", out.Points)
	}

	if _, _, err := tl.getChart(context.Background(), nil, chartInput{Timeframe: "year"}); !errors.Is(err, domain.ErrInvalidTimeframe) {
		t.Fatalf("expected ErrInvalidTimeframe, got %v", err)
	}
}

func TestGetLeaderboardTool(t *testing.T) {
	tl := &tools{dashboard: stubDashboard{}}
	_, out, err := tl.getLeaderboard(context.Background(), nil, emptyInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Buyers) != 3 || len(out.Sellers) != 3 {
		t.Fatalf("unexpected lengths %d/%d", len(out.Buyers), len(out.Sellers))
	}
}

func TestServerListsAndCallsTools(t *testing.T) {
	ctx := context.Background()
	server := newMCPServer(stubDashboard{})
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer clientSession.Close()

	listed, err := clientSession.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	var names []string
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	if len(names) != 3 || names[0] != "get_chart" || names[1] != "get_leaderboard" || names[2] != "get_ticker" {
		t.Fatalf("unexpected tools %v", names)
	}

	res, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_chart",
		Arguments: map[string]any{"timeframe": "quarter"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsError {
		t.Fatal("invalid timeframe should produce a tool error")
	}

	res, err = clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_chart",
		Arguments: map[string]any{"timeframe": "week"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
}

func TestMainBootstrap(t *testing.T) {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitLogger := initLoggerFunc
	origInitPostgres := initPostgresFunc
	origInitTracer := initTracerFunc
	origNewSession := newSessionFunc
	origRunServer := runServerFunc
	t.Cleanup(func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initLoggerFunc = origInitLogger
		initPostgresFunc = origInitPostgres
		initTracerFunc = origInitTracer
		newSessionFunc = origNewSession
		runServerFunc = origRunServer
	})

	var session *dashboard.Session
	var transport string
	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{MCPTransport: "stdio", LeaderboardLimit: 5}
	}
	initLoggerFunc = func(string, string) error { return nil }
	initPostgresFunc = func(context.Context, string) (*pgxpool.Pool, error) {
		return nil, errors.New("DATABASE_URL not set")
	}
	initTracerFunc = func(ctx context.Context, opts tracing.Options) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newSessionFunc = func(cfg *config.Config) (*dashboard.Session, error) {
		s, err := dashboard.New(dashboard.WithInterval(time.Hour))
		session = s
		return s, err
	}
	runServerFunc = func(ctx context.Context, server *mcp.Server, cfg *config.Config) error {
		transport = cfg.MCPTransport
		return nil
	}

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if transport != "stdio" {
		t.Fatalf("unexpected transport %q", transport)
	}
	select {
	case <-session.Done():
	default:
		t.Fatal("session not closed on exit")
	}
}
