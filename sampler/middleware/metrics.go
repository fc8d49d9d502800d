package middleware

import (
	"context"
	"time"

	"github.com/absmach/memmon/pkg/record"
	"github.com/absmach/memmon/sampler"
	"github.com/go-kit/kit/metrics"
)

var _ sampler.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	samples metrics.Gauge
	svc     sampler.Service
}

// Metrics counts runs, observes their wall-clock length and records how many
// samples the last run produced.
func Metrics(counter metrics.Counter, latency metrics.Histogram, samples metrics.Gauge, svc sampler.Service) sampler.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		samples: samples,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Run(ctx context.Context, pid int32, interval, duration time.Duration) (rec record.SeriesRecord, err error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "run").Add(1)
		mm.latency.With("method", "run").Observe(time.Since(begin).Seconds())
		mm.samples.With("method", "run").Set(float64(len(rec.Samples)))
	}(time.Now())

	return mm.svc.Run(ctx, pid, interval, duration)
}
