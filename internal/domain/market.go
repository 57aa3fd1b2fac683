package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Symbol is the simulated instrument shown on the dashboard.
const Symbol = "BTC/USD"

const (
	// BasePrice anchors every generated chart series.
	BasePrice = 45000.0
	// InitialPrice is the ticker's starting price for a new session.
	InitialPrice = 45280.50
	// TickInterval is the ticker cadence.
	TickInterval = 3000 * time.Millisecond
	// AxisPadding is the band renderers add around a series' observed min/max.
	AxisPadding = 500.0
)

var ErrInvalidTimeframe = errors.New("invalid timeframe")

type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

// SupportedTimeframes lists the selectable chart timeframes in display order.
var SupportedTimeframes = []Timeframe{TimeframeDay, TimeframeWeek, TimeframeMonth}

// ParseTimeframe maps user input to a Timeframe. Unknown values are an error,
// never a fallback.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(s)))
	if !tf.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}
	return tf, nil
}

func (t Timeframe) IsValid() bool {
	switch t {
	case TimeframeDay, TimeframeWeek, TimeframeMonth:
		return true
	}
	return false
}

// SampleCount is the number of points a series for t holds, or 0 for an
// unknown timeframe.
func (t Timeframe) SampleCount() int {
	switch t {
	case TimeframeDay:
		return 24
	case TimeframeWeek:
		return 7
	case TimeframeMonth:
		return 30
	}
	return 0
}

// Label returns the label of the i-th sample for t.
func (t Timeframe) Label(i int) string {
	switch t {
	case TimeframeDay:
		return fmt.Sprintf("%d:00", i)
	case TimeframeWeek:
		return fmt.Sprintf("Day %d", i+1)
	case TimeframeMonth:
		return fmt.Sprintf("%d", i+1)
	}
	return ""
}

// Title is the capitalized form used by button rows and headings.
func (t Timeframe) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// PricePoint is one sample of a chart series.
type PricePoint struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// ChartSeries is an ordered, fully regenerated sequence of samples.
type ChartSeries []PricePoint

// Bounds returns the lowest and highest price widened by pad on each side.
func (s ChartSeries) Bounds(pad float64) (lo, hi float64) {
	if len(s) == 0 {
		return -pad, pad
	}
	lo, hi = s[0].Price, s[0].Price
	for _, p := range s[1:] {
		if p.Price < lo {
			lo = p.Price
		}
		if p.Price > hi {
			hi = p.Price
		}
	}
	return lo - pad, hi + pad
}

// Clone returns a copy that does not share the backing array.
func (s ChartSeries) Clone() ChartSeries {
	if s == nil {
		return nil
	}
	out := make(ChartSeries, len(s))
	copy(out, s)
	return out
}

// TickerState is the running simulated price.
type TickerState struct {
	CurrentPrice        float64   `json:"current_price"`
	LastDelta           float64   `json:"last_delta"`
	LastUpdateTimestamp time.Time `json:"last_update"`
}

// ChangePct is the last delta as a percentage of the current price.
func (t TickerState) ChangePct() float64 {
	if t.CurrentPrice == 0 {
		return 0
	}
	return t.LastDelta / t.CurrentPrice * 100
}

// FormatChange renders the delta and percentage with two decimals, e.g.
// "+25.00 (0.06%)".
func (t TickerState) FormatChange() string {
	sign := ""
	if t.LastDelta >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f (%.2f%%)", sign, t.LastDelta, t.ChangePct())
}

// TickerSnapshot is the wire form of TickerState shared over HTTP, Redis and MCP.
type TickerSnapshot struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	LastDelta    float64   `json:"last_delta"`
	ChangePct    float64   `json:"change_pct"`
	LastUpdate   time.Time `json:"last_update"`
}

func NewTickerSnapshot(t TickerState) TickerSnapshot {
	return TickerSnapshot{
		Symbol:       Symbol,
		CurrentPrice: t.CurrentPrice,
		LastDelta:    t.LastDelta,
		ChangePct:    t.ChangePct(),
		LastUpdate:   t.LastUpdateTimestamp,
	}
}

// FormatUSD renders v as $45,280.50.
func FormatUSD(v float64) string {
	s := fmt.Sprintf("%.2f", math.Abs(v))
	neg := v < 0 && s != "0.00"
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
