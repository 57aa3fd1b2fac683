package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"btc-dashboard/internal/domain"
	"btc-dashboard/internal/service"

	tele "gopkg.in/telebot.v3"
)

type stubDashboard struct {
	ticker   *domain.TickerSnapshot
	tickErr  error
	boardErr error
	charts   []string
}

func (s *stubDashboard) GetTicker(ctx context.Context) (*domain.TickerSnapshot, error) {
	return s.ticker, s.tickErr
}

func (s *stubDashboard) GetChart(ctx context.Context, timeframe string) (*service.ChartView, error) {
	s.charts = append(s.charts, timeframe)
	tf, err := domain.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	points := make(domain.ChartSeries, tf.SampleCount())
	for i := range points {
		points[i] = domain.PricePoint{Label: tf.Label(i), Price: domain.BasePrice}
	}
	lo, hi := points.Bounds(domain.AxisPadding)
	return &service.ChartView{Timeframe: tf, Points: points, Min: lo, Max: hi, Volume: domain.DefaultVolume.For(tf)}, nil
}

func (s *stubDashboard) GetLeaderboard(ctx context.Context) (domain.Leaderboard, error) {
	if s.boardErr != nil {
		return domain.Leaderboard{}, s.boardErr
	}
	return domain.DefaultLeaderboard(2), nil
}

func (s *stubDashboard) GetVolume() domain.TradingVolume {
	return domain.DefaultVolume
}

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	called := false
	origNewBot := newBot
	t.Cleanup(func() { newBot = origNewBot })
	newBot = func(pref tele.Settings) (*tele.Bot, error) {
		called = true
		return nil, nil
	}

	if err := StartTelegramBot("", &stubDashboard{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if called {
		t.Fatal("bot must not be created without a token")
	}
}

func TestStartTelegramBotReturnsCreateError(t *testing.T) {
	origNewBot := newBot
	t.Cleanup(func() { newBot = origNewBot })
	newBot = func(pref tele.Settings) (*tele.Bot, error) {
		return nil, errors.New("unauthorized")
	}

	err := StartTelegramBot("token", &stubDashboard{})
	if err == nil || !strings.Contains(err.Error(), "unauthorized") {
		t.Fatalf("expected wrapped create error, got %v", err)
	}
}

func TestPriceReply(t *testing.T) {
	dash := &stubDashboard{ticker: &domain.TickerSnapshot{
		Symbol:       domain.Symbol,
		CurrentPrice: 45305.50,
		LastDelta:    25,
		LastUpdate:   time.Date(2024, 1, 1, 12, 30, 15, 0, time.UTC),
	}}

	got := priceReply(context.Background(), dash)
	for _, want := range []string{"BTC/USD", "$45,305.50", "▲ +25.00", "12:30:15"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply %q missing %q", got, want)
		}
	}

	dash.ticker.LastDelta = -10
	if got := priceReply(context.Background(), dash); !strings.Contains(got, "▼ -10.00") {
		t.Errorf("expected down arrow, got %q", got)
	}
}

func TestPriceReplyError(t *testing.T) {
	got := priceReply(context.Background(), &stubDashboard{tickErr: errors.New("closed")})
	if !strings.HasPrefix(got, "Error fetching price") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestChartReply(t *testing.T) {
	dash := &stubDashboard{}

	got := chartReply(context.Background(), dash, nil)
	if !strings.HasPrefix(got, "Day chart (24 points)") {
		t.Fatalf("default chart should be day, got %q", got)
	}

	got = chartReply(context.Background(), dash, []string{"week"})
	if !strings.HasPrefix(got, "Week chart (7 points)") {
		t.Fatalf("unexpected week reply %q", got)
	}
	if !strings.Contains(got, "Range: $44,500.00 - $45,500.00") {
		t.Fatalf("missing padded range in %q", got)
	}
	if !strings.Contains(got, "Day 7") || !strings.Contains(got, "8,567 BTC") {
		t.Fatalf("missing labels or volume in %q", got)
	}
	if fmt.Sprint(dash.charts) != "[day week]" {
		t.Fatalf("unexpected chart requests %v", dash.charts)
	}
}

func TestChartReplyInvalidTimeframe(t *testing.T) {
	got := chartReply(context.Background(), &stubDashboard{}, []string{"year"})
	if !strings.HasPrefix(got, "Unknown timeframe: year") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestLeaderboardReply(t *testing.T) {
	got := leaderboardReply(context.Background(), &stubDashboard{})
	for _, want := range []string{"Top Buyers", "1. TradePro_88 2.45 BTC @ $45,290 ($110,960)", "Top Sellers", "2. BTCTrader"} {
		if !strings.Contains(got, want) {
			t.Errorf("reply missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "BTCMaster") {
		t.Error("leaderboard should be limited to two entries per side")
	}

	got = leaderboardReply(context.Background(), &stubDashboard{boardErr: errors.New("down")})
	if !strings.HasPrefix(got, "Error fetching leaderboard") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestVolumeReply(t *testing.T) {
	got := volumeReply(domain.DefaultVolume)
	if !strings.Contains(got, "Day: 1,234 BTC") || !strings.Contains(got, "Week: 8,567 BTC") {
		t.Fatalf("unexpected reply %q", got)
	}
}
