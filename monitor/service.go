package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/0x6flab/namegenerator"
	pkgerrors "github.com/absmach/memmon/pkg/errors"
	"github.com/absmach/memmon/pkg/mqtt"
	"github.com/absmach/memmon/pkg/record"
	"github.com/absmach/memmon/pkg/render"
	"github.com/absmach/memmon/pkg/run"
	"github.com/absmach/memmon/pkg/storage"
	"github.com/absmach/memmon/sampler"
	"github.com/google/uuid"
)

const dirPerm = 0o755

var _ Service = (*service)(nil)

type service struct {
	outputDir string
	sampler   sampler.Service
	renderer  render.Renderer
	runs      storage.RunRepository
	publisher mqtt.Publisher
	clock     sampler.Clock
	names     namegenerator.NameGenerator
	logger    *slog.Logger
}

// NewService wires a monitor. runs and publisher are optional; a nil value
// disables archiving or publishing respectively.
func NewService(
	outputDir string,
	smp sampler.Service,
	renderer render.Renderer,
	runs storage.RunRepository,
	publisher mqtt.Publisher,
	clock sampler.Clock,
	logger *slog.Logger,
) Service {
	if clock == nil {
		clock = sampler.SystemClock
	}

	return &service{
		outputDir: outputDir,
		sampler:   smp,
		renderer:  renderer,
		runs:      runs,
		publisher: publisher,
		clock:     clock,
		names:     namegenerator.NewGenerator(),
		logger:    logger,
	}
}

func (svc *service) Monitor(ctx context.Context, req Request) (Report, error) {
	if req.PID <= 0 {
		return Report{}, pkgerrors.ErrInvalidPID
	}
	if req.Interval < 0 || req.Duration < 0 {
		return Report{}, sampler.ErrNegativeDuration
	}

	rc := NewRunContext(svc.outputDir, uuid.NewString(), svc.names.Generate(), svc.clock.Now())
	if err := os.MkdirAll(rc.Dir, dirPerm); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrOutputDir, err)
	}

	rec, sampleErr := svc.sampler.Run(ctx, req.PID, req.Interval, req.Duration)

	recordPath := rc.RecordPath()
	if err := record.Write(recordPath, rec); err != nil {
		return Report{}, err
	}

	persisted, err := record.Read(recordPath)
	if err != nil {
		return Report{}, err
	}

	rpt := Report{
		Run: run.Run{
			ID:          rc.ID,
			Name:        rc.Name,
			PID:         req.PID,
			CommandLine: persisted.CommandLine,
			Interval:    req.Interval,
			Duration:    req.Duration,
			StartedAt:   rc.StartedAt,
			RecordPath:  recordPath,
			Samples:     persisted.Samples,
		},
	}

	chartPath := rc.ChartPath()
	switch err := svc.renderer.Render(persisted.CommandLine, persisted.Samples, chartPath); {
	case errors.Is(err, render.ErrNoData):
		svc.logger.Info("No data collected, skipping chart",
			slog.String("run_id", rc.ID),
			slog.Int("pid", int(req.PID)),
		)
	case err != nil:
		rpt.FinishedAt = svc.clock.Now()

		return rpt, fmt.Errorf("%w: %w", ErrRender, err)
	default:
		rpt.ChartPath = chartPath
	}
	rpt.FinishedAt = svc.clock.Now()

	rpt.Archived = svc.archive(ctx, rpt.Run)
	rpt.Published = svc.publish(ctx, rpt.Run)

	return rpt, sampleErr
}

func (svc *service) GetRun(ctx context.Context, id string) (run.Run, error) {
	if svc.runs == nil {
		return run.Run{}, ErrArchiveDisabled
	}

	return svc.runs.Get(ctx, id)
}

func (svc *service) ListRuns(ctx context.Context, offset, limit uint64) (run.RunPage, error) {
	if svc.runs == nil {
		return run.RunPage{}, ErrArchiveDisabled
	}

	runs, total, err := svc.runs.List(ctx, offset, limit)
	if err != nil {
		return run.RunPage{}, err
	}

	return run.RunPage{
		Offset: offset,
		Limit:  limit,
		Total:  total,
		Runs:   runs,
	}, nil
}

func (svc *service) DeleteRun(ctx context.Context, id string) error {
	if svc.runs == nil {
		return ErrArchiveDisabled
	}

	return svc.runs.Delete(ctx, id)
}

func (svc *service) archive(ctx context.Context, r run.Run) bool {
	if svc.runs == nil {
		return false
	}

	if err := svc.runs.Create(ctx, r); err != nil {
		svc.logger.Warn("Failed to archive run",
			slog.String("run_id", r.ID),
			slog.Any("error", err),
		)

		return false
	}

	return true
}

func (svc *service) publish(ctx context.Context, r run.Run) bool {
	if svc.publisher == nil {
		return false
	}

	if err := svc.publisher.Publish(ctx, mqtt.RunTopic(r.ID), r); err != nil {
		svc.logger.Warn("Failed to publish run",
			slog.String("run_id", r.ID),
			slog.Any("error", err),
		)

		return false
	}

	return true
}
