// Package monitor runs a single memory monitoring session end to end and
// gives access to the archive of past sessions.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/absmach/memmon/pkg/run"
)

const (
	stampLayout  = "20060102_150405"
	filePrefix   = "memory_usage_"
	recordSuffix = ".txt"
	chartSuffix  = ".png"
)

var (
	ErrOutputDir       = errors.New("failed to create output directory")
	ErrArchiveDisabled = errors.New("run archive is disabled")
	ErrRender          = errors.New("failed to render chart")
)

type Service interface {
	// Monitor samples the process described by req, persists the series and
	// renders it. The returned error is non-nil when sampling stopped on an
	// inspection failure; the report still describes the partial run.
	Monitor(ctx context.Context, req Request) (Report, error)
	GetRun(ctx context.Context, id string) (run.Run, error)
	ListRuns(ctx context.Context, offset, limit uint64) (run.RunPage, error)
	DeleteRun(ctx context.Context, id string) error
}

type Request struct {
	PID      int32
	Interval time.Duration
	Duration time.Duration
}

type Report struct {
	run.Run

	Archived  bool `json:"archived"`
	Published bool `json:"published"`
}

// RunContext identifies one run and fixes where its artifacts go.
type RunContext struct {
	ID        string
	Name      string
	StartedAt time.Time
	Stamp     string
	Dir       string
}

func NewRunContext(outputDir, id, name string, startedAt time.Time) RunContext {
	stamp := startedAt.Format(stampLayout)

	return RunContext{
		ID:        id,
		Name:      name,
		StartedAt: startedAt,
		Stamp:     stamp,
		Dir:       filepath.Join(outputDir, stamp),
	}
}

func (rc RunContext) RecordPath() string {
	return filepath.Join(rc.Dir, fmt.Sprintf("%s%s%s", filePrefix, rc.Stamp, recordSuffix))
}

func (rc RunContext) ChartPath() string {
	return filepath.Join(rc.Dir, fmt.Sprintf("%s%s%s", filePrefix, rc.Stamp, chartSuffix))
}
