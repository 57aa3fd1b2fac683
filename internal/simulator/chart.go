package simulator

import (
	"fmt"

	"btc-dashboard/internal/domain"
)

const (
	maxVariance  = 1000.0
	maxTrendStep = 50.0
)

// Generate synthesizes a fresh series for tf. Each sample is
// BasePrice + variance + i*step, with variance in [-1000, 1000] and step in
// [-50, 50] drawn independently per sample. Prices are not bounded.
func Generate(tf domain.Timeframe, rnd RandomSource) (domain.ChartSeries, error) {
	n := tf.SampleCount()
	if n == 0 {
		return nil, fmt.Errorf("generate series: %w: %q", domain.ErrInvalidTimeframe, string(tf))
	}

	series := make(domain.ChartSeries, n)
	for i := range series {
		variance := rnd.Float64()*2*maxVariance - maxVariance
		trend := float64(i) * (rnd.Float64()*2*maxTrendStep - maxTrendStep)
		series[i] = domain.PricePoint{
			Label: tf.Label(i),
			Price: domain.BasePrice + variance + trend,
		}
	}
	return series, nil
}
