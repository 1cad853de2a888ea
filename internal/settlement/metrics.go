package settlement

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type calculatorMetrics struct {
	conversionFallbacks *prometheus.CounterVec
	calculations        prometheus.Counter
	payments            prometheus.Histogram
}

var (
	metricsInstance *calculatorMetrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newCalculatorMetrics() *calculatorMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &calculatorMetrics{
			conversionFallbacks: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "settlement_conversion_fallbacks_total",
				Help: "Expenses settled with their unconverted amount because conversion failed",
			}, []string{"currency"}),
			calculations: promauto.With(defaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "settlement_calculations_total",
				Help: "Total number of settlement summaries computed",
			}),
			payments: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "settlement_payments_per_summary",
				Help:    "Number of transfers in a computed payment plan",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
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
