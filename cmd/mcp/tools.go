package main

import (
	"context"
	"time"

	"btc-dashboard/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type tools struct {
	dashboard Dashboard
}

type emptyInput struct{}

type tickerOutput struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	Delta      float64 `json:"delta"`
	ChangePct  float64 `json:"change_pct"`
	LastUpdate string  `json:"last_update"`
}

type chartInput struct {
	Timeframe string `json:"timeframe" jsonschema:"one of day, week or month"`
}

type chartPoint struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

type chartOutput struct {
	Timeframe string       `json:"timeframe"`
	Min       float64      `json:"min"`
	Max       float64      `json:"max"`
	Volume    string       `json:"volume"`
	Points    []chartPoint `json:"points"`
}

type leaderboardOutput struct {
	Buyers  []domain.Trader `json:"buyers"`
	Sellers []domain.Trader `json:"sellers"`
}

func (t *tools) getTicker(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, tickerOutput, error) {
	ticker, err := t.dashboard.GetTicker(ctx)
	if err != nil {
		return nil, tickerOutput{}, err
	}
	return nil, tickerOutput{
		Symbol:     ticker.Symbol,
		Price:      ticker.CurrentPrice,
		Delta:      ticker.LastDelta,
		ChangePct:  ticker.ChangePct,
		LastUpdate: ticker.LastUpdate.Format(time.RFC3339),
	}, nil
}

func (t *tools) getChart(ctx context.Context, _ *mcp.CallToolRequest, in chartInput) (*mcp.CallToolResult, chartOutput, error) {
	timeframe := in.Timeframe
	if timeframe == "" {
		timeframe = string(domain.TimeframeDay)
	}
	chart, err := t.dashboard.GetChart(ctx, timeframe)
	if err != nil {
		return nil, chartOutput{}, err
	}

	points := make([]chartPoint, len(chart.Points))
	for i, p := range chart.Points {
		points[i] = chartPoint{Label: p.Label, Price: p.Price}
	}
	return nil, chartOutput{
		Timeframe: string(chart.Timeframe),
		Min:       chart.Min,
		Max:       chart.Max,
		Volume:    chart.Volume,
		Points:    points,
	}, nil
}

func (t *tools) getLeaderboard(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, leaderboardOutput, error) {
	board, err := t.dashboard.GetLeaderboard(ctx)
	if err != nil {
		return nil, leaderboardOutput{}, err
	}
	return nil, leaderboardOutput{Buyers: board.Buyers, Sellers: board.Sellers}, nil
}
