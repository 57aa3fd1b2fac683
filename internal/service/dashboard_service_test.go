package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"btc-dashboard/internal/dashboard"
	"btc-dashboard/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("test")

func TestDashboardService_GetTickerCacheNewerThanSession(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	rdb := newFakeRedis()
	cached := domain.TickerSnapshot{Symbol: domain.Symbol, CurrentPrice: 123.45, LastUpdate: now}
	data, _ := json.Marshal(cached)
	_ = rdb.Set(context.Background(), tickerCacheKey, data, 0)

	sess := &fakeSession{snap: dashboard.Snapshot{
		Ticker: domain.TickerState{CurrentPrice: 45000, LastUpdateTimestamp: now.Add(-3 * time.Second)},
	}}
	svc := NewDashboardService(testTracer, sess, nil, rdb, nil, 5)

	got, err := svc.GetTicker(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentPrice != 123.45 {
		t.Fatalf("expected cached price, got %v", got.CurrentPrice)
	}
}

func TestDashboardService_GetTickerStaleCacheLosesToSession(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	rdb := newFakeRedis()
	stale := domain.TickerSnapshot{Symbol: domain.Symbol, CurrentPrice: 45000, LastUpdate: now.Add(-80 * time.Second)}
	data, _ := json.Marshal(stale)
	_ = rdb.Set(context.Background(), tickerCacheKey, data, 0)

	sess := &fakeSession{snap: dashboard.Snapshot{
		Ticker: domain.TickerState{CurrentPrice: 45305.50, LastDelta: 25, LastUpdateTimestamp: now},
	}}
	svc := NewDashboardService(testTracer, sess, nil, rdb, nil, 5)

	got, err := svc.GetTicker(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentPrice != 45305.50 || got.LastDelta != 25 {
		t.Fatalf("expected live session ticker, got %+v", got)
	}
	if !got.LastUpdate.Equal(now) {
		t.Fatalf("expected last update %v, got %v", now, got.LastUpdate)
	}
}

func TestDashboardService_GetTickerSessionErrorServesCache(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	data, _ := json.Marshal(domain.TickerSnapshot{Symbol: domain.Symbol, CurrentPrice: 44000})
	_ = rdb.Set(context.Background(), tickerCacheKey, data, 0)

	sess := &fakeSession{err: dashboard.ErrSessionClosed}
	svc := NewDashboardService(testTracer, sess, nil, rdb, nil, 5)

	got, err := svc.GetTicker(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentPrice != 44000 {
		t.Fatalf("expected cached price, got %v", got.CurrentPrice)
	}
}

func TestDashboardService_GetTickerFallsBackToSession(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{snap: dashboard.Snapshot{
		Ticker: domain.TickerState{CurrentPrice: 45305.50, LastDelta: 25},
	}}
	svc := NewDashboardService(testTracer, sess, nil, newFakeRedis(), nil, 5)

	got, err := svc.GetTicker(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentPrice != 45305.50 || got.LastDelta != 25 || got.Symbol != domain.Symbol {
		t.Fatalf("unexpected ticker: %+v", got)
	}
}

func TestDashboardService_GetTickerRedisError(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	rdb.getErr = errors.New("redis down")
	sess := &fakeSession{snap: dashboard.Snapshot{Ticker: domain.TickerState{CurrentPrice: 1}}}
	svc := NewDashboardService(testTracer, sess, nil, rdb, nil, 5)

	got, err := svc.GetTicker(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentPrice != 1 {
		t.Fatalf("expected session price, got %v", got.CurrentPrice)
	}
}

func TestDashboardService_PublishTicker(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	svc := NewDashboardService(testTracer, &fakeSession{}, nil, rdb, nil, 5)

	state := domain.TickerState{CurrentPrice: 45305.50, LastDelta: 25, LastUpdateTimestamp: time.Unix(1700000000, 0).UTC()}
	if err := svc.PublishTicker(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got domain.TickerSnapshot
	if err := json.Unmarshal(rdb.data[tickerCacheKey], &got); err != nil {
		t.Fatalf("cached payload not json: %v", err)
	}
	if got.CurrentPrice != 45305.50 || got.ChangePct != state.ChangePct() {
		t.Fatalf("unexpected cached ticker: %+v", got)
	}
	if rdb.ttl[tickerCacheKey] != tickerCacheTTL {
		t.Fatalf("expected ttl %v, got %v", tickerCacheTTL, rdb.ttl[tickerCacheKey])
	}

	rdb.setErr = errors.New("readonly replica")
	if err := svc.PublishTicker(context.Background(), state); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestDashboardService_PublishTickerWithoutRedis(t *testing.T) {
	t.Parallel()

	svc := NewDashboardService(testTracer, &fakeSession{}, nil, nil, nil, 5)
	if err := svc.PublishTicker(context.Background(), domain.TickerState{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDashboardService_GetChart(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{series: domain.ChartSeries{
		{Label: "Day 1", Price: 44000},
		{Label: "Day 2", Price: 46000},
	}}
	metrics := &stubMetrics{}
	svc := NewDashboardService(testTracer, sess, nil, nil, metrics, 5)

	view, err := svc.GetChart(context.Background(), "Week")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.lastTimeframe != domain.TimeframeWeek {
		t.Fatalf("expected week selection, got %s", sess.lastTimeframe)
	}
	if view.Min != 43500 || view.Max != 46500 {
		t.Fatalf("unexpected bounds %v..%v", view.Min, view.Max)
	}
	if view.Volume != "8,567 BTC" {
		t.Fatalf("unexpected volume %q", view.Volume)
	}
	if metrics.series["week"] != 1 {
		t.Fatalf("expected series metric, got %v", metrics.series)
	}
}

func TestDashboardService_GetChartInvalidTimeframe(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{}
	metrics := &stubMetrics{}
	svc := NewDashboardService(testTracer, sess, nil, nil, metrics, 5)

	_, err := svc.GetChart(context.Background(), "fortnight")
	if !errors.Is(err, domain.ErrInvalidTimeframe) {
		t.Fatalf("expected ErrInvalidTimeframe, got %v", err)
	}
	if sess.setCalls != 0 {
		t.Fatal("session must not regenerate on invalid input")
	}
	if metrics.invalid != 1 {
		t.Fatalf("expected invalid metric, got %d", metrics.invalid)
	}
}

func TestDashboardService_GetChartSessionClosed(t *testing.T) {
	t.Parallel()

	svc := NewDashboardService(testTracer, &fakeSession{err: dashboard.ErrSessionClosed}, nil, nil, nil, 5)
	if _, err := svc.GetChart(context.Background(), "day"); !errors.Is(err, dashboard.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestDashboardService_GetLeaderboardDefaults(t *testing.T) {
	t.Parallel()

	svc := NewDashboardService(testTracer, &fakeSession{}, nil, nil, nil, 3)
	lb, err := svc.GetLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lb.Buyers) != 3 || len(lb.Sellers) != 3 {
		t.Fatalf("expected 3/3 entries, got %d/%d", len(lb.Buyers), len(lb.Sellers))
	}
}

func TestDashboardService_GetLeaderboardFromRepo(t *testing.T) {
	t.Parallel()

	repo := &stubLeaderboardRepo{rows: map[domain.TradeSide][]domain.Trader{
		domain.SideBuy:  {{Name: "Alice"}},
		domain.SideSell: {{Name: "Bob"}},
	}}
	svc := NewDashboardService(testTracer, &fakeSession{}, repo, nil, nil, 5)

	lb, err := svc.GetLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lb.Buyers[0].Name != "Alice" || lb.Sellers[0].Name != "Bob" {
		t.Fatalf("unexpected leaderboard: %+v", lb)
	}
	if repo.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", repo.lastLimit)
	}
}

func TestDashboardService_GetLeaderboardRepoError(t *testing.T) {
	t.Parallel()

	repo := &stubLeaderboardRepo{err: errors.New("db down")}
	svc := NewDashboardService(testTracer, &fakeSession{}, repo, nil, nil, 5)

	lb, err := svc.GetLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lb.Buyers[0].Name != domain.DefaultBuyers[0].Name {
		t.Fatalf("expected built-in fallback, got %+v", lb)
	}
}

func TestDashboardService_Subscribe(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{}
	svc := NewDashboardService(testTracer, sess, nil, nil, nil, 5)

	var got domain.TickerState
	cancel := svc.Subscribe(func(ts domain.TickerState) { got = ts })
	sess.emit(domain.TickerState{CurrentPrice: 7})
	cancel()
	sess.emit(domain.TickerState{CurrentPrice: 8})

	if got.CurrentPrice != 7 {
		t.Fatalf("expected only first tick, got %v", got.CurrentPrice)
	}
}

type fakeSession struct {
	snap          dashboard.Snapshot
	series        domain.ChartSeries
	err           error
	snapshotCalls int
	setCalls      int
	lastTimeframe domain.Timeframe
	listener      func(domain.TickerState)
}

func (f *fakeSession) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	f.snapshotCalls++
	return f.snap, f.err
}

func (f *fakeSession) SetTimeframe(ctx context.Context, tf domain.Timeframe) (domain.ChartSeries, error) {
	f.setCalls++
	f.lastTimeframe = tf
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func (f *fakeSession) OnTick(cb func(domain.TickerState)) func() {
	f.listener = cb
	return func() { f.listener = nil }
}

func (f *fakeSession) emit(ts domain.TickerState) {
	if f.listener != nil {
		f.listener(ts)
	}
}

type stubLeaderboardRepo struct {
	rows      map[domain.TradeSide][]domain.Trader
	err       error
	lastLimit int
}

func (s *stubLeaderboardRepo) ListTraders(ctx context.Context, side domain.TradeSide, limit int) ([]domain.Trader, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[side], nil
}

type stubMetrics struct {
	series  map[string]int
	invalid int
}

func (s *stubMetrics) RecordSeries(tf string) {
	if s.series == nil {
		s.series = make(map[string]int)
	}
	s.series[tf]++
}

func (s *stubMetrics) RecordInvalidTimeframe() { s.invalid++ }

type fakeRedis struct {
	data   map[string][]byte
	ttl    map[string]time.Duration
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttl: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
