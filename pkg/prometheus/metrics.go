// Package prometheus builds the go-kit instruments used by the service
// middleware and exports them for the node exporter textfile collector.
package prometheus

import (
	"fmt"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

var labels = []string{"method"}

// MakeMetrics registers a request counter, a latency histogram and a sample
// count gauge with reg.
func MakeMetrics(reg prometheus.Registerer, namespace, subsystem string) (*kitprometheus.Counter, *kitprometheus.Histogram, *kitprometheus.Gauge) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, labels)
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_latency_seconds",
		Help:      "Total duration of requests in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	}, labels)
	samples := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "samples",
		Help:      "Number of samples collected by the last request.",
	}, labels)

	reg.MustRegister(counter, latency, samples)

	return kitprometheus.NewCounter(counter), kitprometheus.NewHistogram(latency), kitprometheus.NewGauge(samples)
}

// WriteTextfile dumps every metric gathered by g to path in the text
// exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
