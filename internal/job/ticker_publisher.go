package job

import (
	"context"
	"time"

	"btc-dashboard/internal/domain"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const publishTimeout = 2 * time.Second

// TickerPublisher mirrors every session tick into the shared Redis snapshot
// and the tick metrics. Publishing happens off the session goroutine.
type TickerPublisher struct {
	tracer  trace.Tracer
	service TickerSink
	metrics TickMetrics
	buffer  int
}

type TickerSink interface {
	Subscribe(cb func(domain.TickerState)) (cancel func())
	PublishTicker(ctx context.Context, state domain.TickerState) error
}

type TickMetrics interface {
	RecordTick(price float64)
	RecordPublishError(sink string)
}

func NewTickerPublisher(tracer trace.Tracer, service TickerSink, metrics TickMetrics) *TickerPublisher {
	return &TickerPublisher{
		tracer:  tracer,
		service: service,
		metrics: metrics,
		buffer:  16,
	}
}

// Start subscribes to ticks and publishes them. Blocks until ctx is cancelled.
func (p *TickerPublisher) Start(ctx context.Context) {
	log.Info().Msg("ticker publisher starting")

	ticks := make(chan domain.TickerState, p.buffer)
	cancel := p.service.Subscribe(func(ts domain.TickerState) {
		select {
		case ticks <- ts:
		default:
			// publisher is behind; the next tick supersedes this one
		}
	})
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("ticker publisher stopped")
			return
		case ts := <-ticks:
			p.publish(ctx, ts)
		}
	}
}

func (p *TickerPublisher) publish(ctx context.Context, ts domain.TickerState) {
	ctx, span := p.tracer.Start(ctx, "ticker-publisher.publish")
	defer span.End()

	if p.metrics != nil {
		p.metrics.RecordTick(ts.CurrentPrice)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.service.PublishTicker(ctx, ts); err != nil {
		span.RecordError(err)
		if p.metrics != nil {
			p.metrics.RecordPublishError("redis")
		}
		log.Warn().Err(err).Float64("price", ts.CurrentPrice).Msg("ticker publish failed")
		return
	}
	log.Debug().Float64("price", ts.CurrentPrice).Float64("delta", ts.LastDelta).Msg("ticker published")
}
