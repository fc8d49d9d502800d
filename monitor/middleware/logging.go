package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/memmon/monitor"
	"github.com/absmach/memmon/pkg/run"
)

var _ monitor.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    monitor.Service
}

func Logging(logger *slog.Logger, svc monitor.Service) monitor.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Monitor(ctx context.Context, req monitor.Request) (rpt monitor.Report, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("run",
				slog.String("id", rpt.ID),
				slog.String("name", rpt.Name),
				slog.Int("pid", int(req.PID)),
				slog.Int("samples", len(rpt.Samples)),
				slog.String("record", rpt.RecordPath),
				slog.String("chart", rpt.ChartPath),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Monitor run failed", args...)

			return
		}
		lm.logger.Info("Monitor run completed successfully", args...)
	}(time.Now())

	return lm.svc.Monitor(ctx, req)
}

func (lm *loggingMiddleware) GetRun(ctx context.Context, id string) (r run.Run, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("run_id", id),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get run failed", args...)

			return
		}
		lm.logger.Info("Get run completed successfully", args...)
	}(time.Now())

	return lm.svc.GetRun(ctx, id)
}

func (lm *loggingMiddleware) ListRuns(ctx context.Context, offset, limit uint64) (page run.RunPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("page",
				slog.Uint64("offset", offset),
				slog.Uint64("limit", limit),
				slog.Uint64("total", page.Total),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List runs failed", args...)

			return
		}
		lm.logger.Info("List runs completed successfully", args...)
	}(time.Now())

	return lm.svc.ListRuns(ctx, offset, limit)
}

func (lm *loggingMiddleware) DeleteRun(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("run_id", id),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Delete run failed", args...)

			return
		}
		lm.logger.Info("Delete run completed successfully", args...)
	}(time.Now())

	return lm.svc.DeleteRun(ctx, id)
}
