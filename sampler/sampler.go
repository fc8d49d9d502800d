// Package sampler polls a process's resident memory at a fixed interval
// until a deadline passes or the process exits.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	pkgerrors "github.com/absmach/memmon/pkg/errors"
	"github.com/absmach/memmon/pkg/inspector"
	"github.com/absmach/memmon/pkg/record"
)

var ErrNegativeDuration = errors.New("interval and duration must not be negative")

type Service interface {
	// Run samples pid every interval until duration has elapsed or the
	// process disappears. When inspection fails for any other reason the
	// samples gathered so far are returned along with the error.
	Run(ctx context.Context, pid int32, interval, duration time.Duration) (record.SeriesRecord, error)
}

// Clock abstracts wall-clock reads and the blocking wait between ticks.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the Clock backed by the time package.
var SystemClock Clock = systemClock{}

var _ Service = (*service)(nil)

type service struct {
	inspector inspector.Inspector
	clock     Clock
	progress  io.Writer
	logger    *slog.Logger
}

// NewService returns a sampler that prints one progress line per sample to
// progress.
func NewService(insp inspector.Inspector, clock Clock, progress io.Writer, logger *slog.Logger) Service {
	if clock == nil {
		clock = SystemClock
	}
	if progress == nil {
		progress = io.Discard
	}

	return &service{
		inspector: insp,
		clock:     clock,
		progress:  progress,
		logger:    logger,
	}
}

func (svc *service) Run(ctx context.Context, pid int32, interval, duration time.Duration) (record.SeriesRecord, error) {
	var rec record.SeriesRecord

	if pid <= 0 {
		return rec, pkgerrors.ErrInvalidPID
	}
	if interval < 0 || duration < 0 {
		return rec, ErrNegativeDuration
	}

	deadline := svc.clock.Now().Add(duration)

	for svc.clock.Now().Before(deadline) {
		now := svc.clock.Now()

		res, err := svc.inspector.Inspect(ctx, pid)
		if err != nil {
			return rec, fmt.Errorf("sampling stopped after %d samples: %w", len(rec.Samples), err)
		}

		if !res.Found {
			svc.logger.Info("Process no longer exists, stopping sampling",
				slog.Int("pid", int(pid)),
				slog.Int("samples", len(rec.Samples)),
			)

			break
		}

		sample := record.Sample{
			Timestamp:  epochSeconds(now),
			ResidentMB: res.ResidentMB,
		}
		rec.CommandLine = res.CommandLine
		rec.Samples = append(rec.Samples, sample)

		fmt.Fprintln(svc.progress, record.FormatSample(sample))
		svc.logger.Debug("Collected sample",
			slog.Int("pid", int(pid)),
			slog.Float64("timestamp", sample.Timestamp),
			slog.Float64("resident_mb", sample.ResidentMB),
		)

		svc.clock.Sleep(interval)
	}

	return rec, nil
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
