package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"btc-dashboard/internal/domain"
	"btc-dashboard/internal/service"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

const replyTimeout = 5 * time.Second

// Dashboard is the read side of the service the bot answers from.
type Dashboard interface {
	GetTicker(ctx context.Context) (*domain.TickerSnapshot, error)
	GetChart(ctx context.Context, timeframe string) (*service.ChartView, error)
	GetLeaderboard(ctx context.Context) (domain.Leaderboard, error)
	GetVolume() domain.TradingVolume
}

var newBot = tele.NewBot

// StartTelegramBot starts long polling in the background. An empty token
// disables the bot.
func StartTelegramBot(token string, dashboard Dashboard) error {
	if token == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	b, err := newBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("create telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/price", func(c tele.Context) error {
		return c.Send(reply(func(ctx context.Context) string { return priceReply(ctx, dashboard) }))
	})
	b.Handle("/chart", func(c tele.Context) error {
		args := c.Args()
		return c.Send(reply(func(ctx context.Context) string { return chartReply(ctx, dashboard, args) }))
	})
	b.Handle("/top", func(c tele.Context) error {
		return c.Send(reply(func(ctx context.Context) string { return leaderboardReply(ctx, dashboard) }))
	})
	b.Handle("/volume", func(c tele.Context) error {
		return c.Send(volumeReply(dashboard.GetVolume()))
	})

	log.Info().Msg("Telegram bot started")
	go b.Start()
	return nil
}

func reply(fn func(ctx context.Context) string) string {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	return fn(ctx)
}

func priceReply(ctx context.Context, dashboard Dashboard) string {
	ticker, err := dashboard.GetTicker(ctx)
	if err != nil {
		return fmt.Sprintf("Error fetching price: %v", err)
	}
	direction := "▲"
	if ticker.LastDelta < 0 {
		direction = "▼"
	}
	state := domain.TickerState{CurrentPrice: ticker.CurrentPrice, LastDelta: ticker.LastDelta}
	return fmt.Sprintf(
		"%s\nPrice: %s\nChange: %s %s\nUpdated: %s",
		ticker.Symbol, domain.FormatUSD(ticker.CurrentPrice), direction, state.FormatChange(),
		ticker.LastUpdate.Format("15:04:05"),
	)
}

func chartReply(ctx context.Context, dashboard Dashboard, args []string) string {
	timeframe := string(domain.TimeframeDay)
	if len(args) > 0 {
		timeframe = args[0]
	}
	chart, err := dashboard.GetChart(ctx, timeframe)
	if errors.Is(err, domain.ErrInvalidTimeframe) {
		return fmt.Sprintf("Unknown timeframe: %s\nUsage: /chart day|week|month", timeframe)
	}
	if err != nil {
		return fmt.Sprintf("Error generating chart: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s chart (%d points)\n", chart.Timeframe.Title(), len(chart.Points))
	fmt.Fprintf(&b, "Range: %s - %s\n", domain.FormatUSD(chart.Min), domain.FormatUSD(chart.Max))
	fmt.Fprintf(&b, "Volume: %s\n", chart.Volume)
	for _, p := range chart.Points {
		fmt.Fprintf(&b, "%-7s %s\n", p.Label, domain.FormatUSD(p.Price))
	}
	return strings.TrimRight(b.String(), "\n")
}

func leaderboardReply(ctx context.Context, dashboard Dashboard) string {
	board, err := dashboard.GetLeaderboard(ctx)
	if err != nil {
		return fmt.Sprintf("Error fetching leaderboard: %v", err)
	}
	var b strings.Builder
	b.WriteString("Top Buyers\n")
	writeTraders(&b, board.Buyers)
	b.WriteString("\nTop Sellers\n")
	writeTraders(&b, board.Sellers)
	return strings.TrimRight(b.String(), "\n")
}

func writeTraders(b *strings.Builder, traders []domain.Trader) {
	for i, t := range traders {
		fmt.Fprintf(b, "%d. %s %s @ %s (%s)\n", i+1, t.Name, t.Amount, t.Price, t.Total)
	}
}

func volumeReply(v domain.TradingVolume) string {
	return fmt.Sprintf("BTC Trading Volume\nDay: %s\nWeek: %s\nMonth: %s", v.Day, v.Week, v.Month)
}
