package simulator

import (
	"time"

	"btc-dashboard/internal/domain"
)

// MaxTickDelta bounds the absolute per-tick price move.
const MaxTickDelta = 50.0

// Advance performs one random-walk step. The delta is drawn uniformly from
// [-50, +50] and no clamping is applied to the resulting price.
func Advance(state domain.TickerState, rnd RandomSource, now time.Time) domain.TickerState {
	delta := (rnd.Float64() - 0.5) * 2 * MaxTickDelta
	return domain.TickerState{
		CurrentPrice:        state.CurrentPrice + delta,
		LastDelta:           delta,
		LastUpdateTimestamp: now,
	}
}

// NewTicker returns the state a session starts from.
func NewTicker(initialPrice float64, now time.Time) domain.TickerState {
	return domain.TickerState{CurrentPrice: initialPrice, LastUpdateTimestamp: now}
}
