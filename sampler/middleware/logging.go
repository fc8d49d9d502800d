package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/memmon/pkg/record"
	"github.com/absmach/memmon/sampler"
)

var _ sampler.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    sampler.Service
}

func Logging(logger *slog.Logger, svc sampler.Service) sampler.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Run(ctx context.Context, pid int32, interval, duration time.Duration) (rec record.SeriesRecord, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("sampling",
				slog.Int("pid", int(pid)),
				slog.String("interval", interval.String()),
				slog.String("duration", duration.String()),
			),
			slog.Int("samples", len(rec.Samples)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Sampling failed", args...)

			return
		}
		lm.logger.Info("Sampling completed successfully", args...)
	}(time.Now())

	return lm.svc.Run(ctx, pid, interval, duration)
}
