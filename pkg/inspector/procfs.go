package inspector

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/procfs"
)

var _ Inspector = (*procfsInspector)(nil)

type procfsInspector struct {
	fs procfs.FS
}

// NewProcfs returns an inspector reading /proc directly. It is only
// available on Linux.
func NewProcfs() (Inspector, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInspect, err)
	}

	return &procfsInspector{fs: fs}, nil
}

// NewProcfsAt returns an inspector reading a proc filesystem mounted at
// mountPoint.
func NewProcfsAt(mountPoint string) (Inspector, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInspect, err)
	}

	return &procfsInspector{fs: fs}, nil
}

func (pi *procfsInspector) Inspect(_ context.Context, pid int32) (Result, error) {
	proc, err := pi.fs.Proc(int(pid))
	if err != nil {
		if gone(err) {
			return notFound(), nil
		}

		return Result{}, fmt.Errorf("%w %d: %w", ErrInspect, pid, err)
	}

	args, err := proc.CmdLine()
	if err != nil {
		if gone(err) {
			return notFound(), nil
		}

		return Result{}, fmt.Errorf("%w %d: %w", ErrInspect, pid, err)
	}

	stat, err := proc.Stat()
	if err != nil {
		if gone(err) {
			return notFound(), nil
		}

		return Result{}, fmt.Errorf("%w %d: %w", ErrInspect, pid, err)
	}

	return found(strings.Join(args, " "), uint64(stat.ResidentMemory())), nil
}
