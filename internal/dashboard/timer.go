package dashboard

import (
	"errors"
	"time"
)

// Timer is a recurring timer handle. Stop must release it.
type Timer interface {
	C() <-chan time.Time
	Stop()
}

// TimerFactory acquires a recurring timer firing every d.
type TimerFactory func(d time.Duration) (Timer, error)

type tickerTimer struct {
	t *time.Ticker
}

func (t tickerTimer) C() <-chan time.Time { return t.t.C }
func (t tickerTimer) Stop()               { t.t.Stop() }

// NewTickerTimer is the default TimerFactory backed by time.Ticker.
func NewTickerTimer(d time.Duration) (Timer, error) {
	if d <= 0 {
		return nil, errors.New("tick interval must be positive")
	}
	return tickerTimer{t: time.NewTicker(d)}, nil
}
