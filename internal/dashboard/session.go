package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"btc-dashboard/internal/domain"
	"btc-dashboard/internal/simulator"

	"github.com/rs/zerolog/log"
)

var (
	ErrSessionClosed  = errors.New("dashboard session closed")
	ErrSessionStarted = errors.New("dashboard session already started")
)

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Ticker    domain.TickerState `json:"ticker"`
	Timeframe domain.Timeframe   `json:"timeframe"`
	Series    domain.ChartSeries `json:"series"`
}

type Option func(*Session)

func WithRandomSource(rnd simulator.RandomSource) Option {
	return func(s *Session) { s.rnd = rnd }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

func WithInitialPrice(p float64) Option {
	return func(s *Session) { s.initialPrice = p }
}

func WithTimeframe(tf domain.Timeframe) Option {
	return func(s *Session) { s.timeframe = tf }
}

func WithTimerFactory(f TimerFactory) Option {
	return func(s *Session) { s.newTimer = f }
}

// Session owns the ticker state and the current chart series of one
// dashboard view. Once started, every mutation runs on a single owner
// goroutine; tick listeners are invoked there and must neither block nor
// call back into the session.
type Session struct {
	rnd          simulator.RandomSource
	now          func() time.Time
	interval     time.Duration
	initialPrice float64
	newTimer     TimerFactory

	// owned by the loop goroutine once started
	ticker    domain.TickerState
	timeframe domain.Timeframe
	series    domain.ChartSeries

	listenersMu sync.Mutex
	listeners   map[uint64]func(domain.TickerState)
	nextID      uint64

	lifecycle sync.Mutex
	started   bool
	closed    bool
	closeOnce sync.Once

	requests chan func()
	quit     chan struct{}
	done     chan struct{}

	ticks atomic.Int64
}

// New builds a session and generates the startup series for its default
// timeframe.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		now:          time.Now,
		interval:     domain.TickInterval,
		initialPrice: domain.InitialPrice,
		timeframe:    domain.TimeframeDay,
		newTimer:     NewTickerTimer,
		listeners:    make(map[uint64]func(domain.TickerState)),
		requests:     make(chan func()),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = simulator.NewRandomSource()
	}

	series, err := simulator.Generate(s.timeframe, s.rnd)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s.series = series
	s.ticker = simulator.NewTicker(s.initialPrice, s.now())
	return s, nil
}

// Start acquires the recurring timer and launches the owner goroutine. The
// timer is released on every failed setup path, and later by Close or by
// cancellation of ctx.
func (s *Session) Start(ctx context.Context) (err error) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.started {
		return ErrSessionStarted
	}

	timer, err := s.newTimer(s.interval)
	if err != nil {
		return fmt.Errorf("acquire tick timer: %w", err)
	}
	defer func() {
		if err != nil {
			timer.Stop()
		}
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	s.started = true
	go s.run(ctx, timer)
	log.Debug().Dur("interval", s.interval).Msg("dashboard session started")
	return nil
}

// Close stops the timer exactly once and waits for the owner goroutine to
// exit. No tick is applied after Close returns.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.lifecycle.Lock()
		s.closed = true
		started := s.started
		s.lifecycle.Unlock()

		close(s.quit)
		if started {
			<-s.done
		} else {
			close(s.done)
		}
		log.Debug().Int64("ticks", s.ticks.Load()).Msg("dashboard session closed")
	})
}

// Done is closed once the owner goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// OnTick registers cb for every tick. The returned cancel is idempotent.
func (s *Session) OnTick(cb func(domain.TickerState)) (cancel func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = cb
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// SetTimeframe regenerates the series for tf and makes it current. Every
// call regenerates, including for the current timeframe.
func (s *Session) SetTimeframe(ctx context.Context, tf domain.Timeframe) (domain.ChartSeries, error) {
	if !tf.IsValid() {
		return nil, fmt.Errorf("set timeframe: %w: %q", domain.ErrInvalidTimeframe, string(tf))
	}

	var (
		out    domain.ChartSeries
		genErr error
	)
	err := s.do(ctx, func() {
		series, err := simulator.Generate(tf, s.rnd)
		if err != nil {
			genErr = err
			return
		}
		s.timeframe = tf
		s.series = series
		out = series.Clone()
	})
	if err != nil {
		return nil, err
	}
	return out, genErr
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func() {
		snap = Snapshot{
			Ticker:    s.ticker,
			Timeframe: s.timeframe,
			Series:    s.series.Clone(),
		}
	})
	return snap, err
}

// do runs fn with exclusive access to the session state: inline while the
// session is not started, on the owner goroutine afterwards.
func (s *Session) do(ctx context.Context, fn func()) error {
	s.lifecycle.Lock()
	if s.closed {
		s.lifecycle.Unlock()
		return ErrSessionClosed
	}
	if !s.started {
		fn()
		s.lifecycle.Unlock()
		return nil
	}
	s.lifecycle.Unlock()

	reply := make(chan struct{})
	req := func() {
		fn()
		close(reply)
	}

	select {
	case s.requests <- req:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-reply
	return nil
}

func (s *Session) run(ctx context.Context, timer Timer) {
	defer close(s.done)
	defer timer.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ctx.Done():
			return
		case <-timer.C():
			s.tick()
		case req := <-s.requests:
			req()
		}
	}
}

func (s *Session) tick() {
	s.ticker = simulator.Advance(s.ticker, s.rnd, s.now())
	s.ticks.Add(1)

	s.listenersMu.Lock()
	listeners := make([]func(domain.TickerState), 0, len(s.listeners))
	for _, cb := range s.listeners {
		listeners = append(listeners, cb)
	}
	s.listenersMu.Unlock()

	for _, cb := range listeners {
		cb(s.ticker)
	}
}
