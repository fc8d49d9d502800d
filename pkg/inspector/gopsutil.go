package inspector

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

var _ Inspector = (*gopsutilInspector)(nil)

type gopsutilInspector struct{}

// NewGopsutil returns an inspector backed by gopsutil, which works on every
// platform gopsutil supports.
func NewGopsutil() Inspector {
	return &gopsutilInspector{}
}

func (gi *gopsutilInspector) Inspect(ctx context.Context, pid int32) (Result, error) {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) || gone(err) {
			return notFound(), nil
		}

		return Result{}, fmt.Errorf("%w %d: %w", ErrInspect, pid, err)
	}

	cmdline, err := proc.CmdlineWithContext(ctx)
	if err != nil {
		if gone(err) {
			return notFound(), nil
		}

		return Result{}, fmt.Errorf("%w %d: %w", ErrInspect, pid, err)
	}

	memInfo, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		if gone(err) {
			return notFound(), nil
		}

		return Result{}, fmt.Errorf("%w %d: %w", ErrInspect, pid, err)
	}

	return found(cmdline, memInfo.RSS), nil
}
