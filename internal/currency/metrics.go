package currency

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type gatewayMetrics struct {
	lookups      *prometheus.CounterVec
	feedRuns     *prometheus.CounterVec
	feedApplied  prometheus.Counter
	lastFeedTime prometheus.Gauge
}

var (
	metricsInstance *gatewayMetrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newGatewayMetrics() *gatewayMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &gatewayMetrics{
			lookups: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "currency_rate_lookups_total",
				Help: "Rate lookups by the source that answered them",
			}, []string{"source"}),
			feedRuns: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "currency_feed_runs_total",
				Help: "Rate feed refreshes by outcome",
			}, []string{"status"}),
			feedApplied: promauto.With(defaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "currency_feed_rates_applied_total",
				Help: "Rates updated or created from the rate feed",
			}),
			lastFeedTime: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "currency_feed_last_success_timestamp_seconds",
				Help: "Unix time of the last successful rate feed refresh",
			}),
		}
	})
	return metricsInstance
}

// resetMetricsForTesting swaps in a fresh registry. Only for tests.
func resetMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	defaultRegistry = reg
	metricsInstance = nil
	metricsOnce = sync.Once{}
	return reg
}
