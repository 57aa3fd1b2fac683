package tui

import (
	"context"
	"time"

	"btc-dashboard/internal/dashboard"
	"btc-dashboard/internal/domain"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const setTimeframeTimeout = time.Second

// Session is the per-view state owner the model renders.
type Session interface {
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
	SetTimeframe(ctx context.Context, tf domain.Timeframe) (domain.ChartSeries, error)
	OnTick(cb func(domain.TickerState)) (cancel func())
	Done() <-chan struct{}
}

type tickMsg domain.TickerState

// Model is the terminal dashboard for one SSH connection.
type Model struct {
	session     Session
	ticks       chan domain.TickerState
	unsubscribe func()

	ticker      domain.TickerState
	timeframe   domain.Timeframe
	series      domain.ChartSeries
	leaderboard domain.Leaderboard
	volume      domain.TradingVolume
	username    string
	err         error

	width  int
	height int
	keys   keyMap
	help   help.Model
}

func NewModel(session Session, leaderboard domain.Leaderboard, volume domain.TradingVolume, username string) *Model {
	m := &Model{
		session:     session,
		ticks:       make(chan domain.TickerState, 1),
		leaderboard: leaderboard,
		volume:      volume,
		username:    username,
		width:       100,
		height:      40,
		keys:        defaultKeys,
		help:        help.New(),
	}

	snap, err := session.Snapshot(context.Background())
	if err != nil {
		m.err = err
	} else {
		m.ticker = snap.Ticker
		m.timeframe = snap.Timeframe
		m.series = snap.Series
	}

	m.unsubscribe = session.OnTick(func(ts domain.TickerState) {
		// keep only the freshest tick if the view falls behind
		select {
		case m.ticks <- ts:
		default:
			select {
			case <-m.ticks:
			default:
			}
			select {
			case m.ticks <- ts:
			default:
			}
		}
	})
	return m
}

func (m *Model) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
	m.help.Width = m.width
}

func (m *Model) Init() tea.Cmd {
	return m.waitForTick()
}

func (m *Model) waitForTick() tea.Cmd {
	return func() tea.Msg {
		select {
		case ts := <-m.ticks:
			return tickMsg(ts)
		case <-m.session.Done():
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		m.ticker = domain.TickerState(msg)
		return m, m.waitForTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.unsubscribe()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Day):
			m.selectTimeframe(domain.TimeframeDay)
		case key.Matches(msg, m.keys.Week):
			m.selectTimeframe(domain.TimeframeWeek)
		case key.Matches(msg, m.keys.Month):
			m.selectTimeframe(domain.TimeframeMonth)
		case key.Matches(msg, m.keys.Next):
			m.selectTimeframe(m.shiftTimeframe(1))
		case key.Matches(msg, m.keys.Prev):
			m.selectTimeframe(m.shiftTimeframe(-1))
		}
	}
	return m, nil
}

func (m *Model) selectTimeframe(tf domain.Timeframe) {
	ctx, cancel := context.WithTimeout(context.Background(), setTimeframeTimeout)
	defer cancel()

	series, err := m.session.SetTimeframe(ctx, tf)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.timeframe = tf
	m.series = series
}

func (m *Model) shiftTimeframe(step int) domain.Timeframe {
	n := len(domain.SupportedTimeframes)
	idx := 0
	for i, tf := range domain.SupportedTimeframes {
		if tf == m.timeframe {
			idx = i
			break
		}
	}
	return domain.SupportedTimeframes[((idx+step)%n+n)%n]
}
