package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder publishes dashboard simulation metrics to Prometheus.
type Recorder struct {
	gatherer prometheus.Gatherer

	ticksTotal       prometheus.Counter
	seriesGenerated  *prometheus.CounterVec
	invalidTimeframe prometheus.Counter
	lastPrice        prometheus.Gauge
	publishErrors    *prometheus.CounterVec
}

// New registers the dashboard metrics on reg. Pass prometheus.NewRegistry()
// in tests so repeated construction does not collide.
func New(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		ticksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "btcdash_ticks_total",
			Help: "Total number of simulated ticker advances",
		}),
		seriesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "btcdash_series_generated_total",
			Help: "Total number of chart series generated",
		}, []string{"timeframe"}),
		invalidTimeframe: factory.NewCounter(prometheus.CounterOpts{
			Name: "btcdash_invalid_timeframe_total",
			Help: "Total number of rejected timeframe selections",
		}),
		lastPrice: factory.NewGauge(prometheus.GaugeOpts{
			Name: "btcdash_last_price",
			Help: "Last simulated BTC/USD price",
		}),
		publishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "btcdash_publish_errors_total",
			Help: "Total number of failed ticker publications",
		}, []string{"sink"}),
	}
}

func (r *Recorder) RecordTick(price float64) {
	r.ticksTotal.Inc()
	r.lastPrice.Set(price)
}

func (r *Recorder) RecordSeries(timeframe string) {
	r.seriesGenerated.WithLabelValues(timeframe).Inc()
}

func (r *Recorder) RecordInvalidTimeframe() {
	r.invalidTimeframe.Inc()
}

func (r *Recorder) RecordPublishError(sink string) {
	r.publishErrors.WithLabelValues(sink).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
