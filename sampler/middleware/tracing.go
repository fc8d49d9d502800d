package middleware

import (
	"context"
	"time"

	"github.com/absmach/memmon/pkg/record"
	"github.com/absmach/memmon/sampler"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ sampler.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    sampler.Service
}

func Tracing(tracer trace.Tracer, svc sampler.Service) sampler.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Run(ctx context.Context, pid int32, interval, duration time.Duration) (rec record.SeriesRecord, err error) {
	ctx, span := tm.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.Int("pid", int(pid)),
		attribute.String("interval", interval.String()),
		attribute.String("duration", duration.String()),
	))
	defer func() {
		span.SetAttributes(attribute.Int("samples", len(rec.Samples)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return tm.svc.Run(ctx, pid, interval, duration)
}
