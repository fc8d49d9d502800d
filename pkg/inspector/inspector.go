// Package inspector takes point-in-time snapshots of a process's command
// line and resident memory.
package inspector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

const bytesPerMB = 1024 * 1024

const (
	BackendGopsutil = "gopsutil"
	BackendProcfs   = "procfs"
)

var (
	ErrInspect        = errors.New("failed to inspect process")
	ErrUnknownBackend = errors.New("unknown inspector backend")
)

// Result is the outcome of a single inspection. Found is false when the
// process no longer exists, in which case the other fields are zero.
type Result struct {
	Found       bool    `json:"found"`
	CommandLine string  `json:"command_line"`
	ResidentMB  float64 `json:"resident_mb"`
}

// Inspector snapshots a process by pid. A vanished process is reported
// through Result.Found, never through the error.
type Inspector interface {
	Inspect(ctx context.Context, pid int32) (Result, error)
}

// New returns the inspector implemented by backend.
func New(backend string) (Inspector, error) {
	switch backend {
	case BackendGopsutil, "":
		return NewGopsutil(), nil
	case BackendProcfs:
		return NewProcfs()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

func notFound() Result {
	return Result{Found: false}
}

func found(cmdline string, rssBytes uint64) Result {
	return Result{
		Found:       true,
		CommandLine: cmdline,
		ResidentMB:  float64(rssBytes) / bytesPerMB,
	}
}

// gone reports whether err means the process exited between or during
// reads of its /proc entries.
func gone(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ESRCH)
}
