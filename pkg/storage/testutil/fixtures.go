package testutil

import (
	"time"

	"github.com/absmach/memmon/pkg/record"
	"github.com/absmach/memmon/pkg/run"
)

var baseTime = time.Date(2025, time.October, 18, 14, 30, 5, 0, time.UTC)

// TestRun returns a run that started offset after a fixed base time.
func TestRun(id string, offset time.Duration) run.Run {
	started := baseTime.Add(offset)

	return run.Run{
		ID:          id,
		Name:        "test-run-" + id,
		PID:         4242,
		CommandLine: "/usr/bin/python3 worker.py --queue default",
		Interval:    time.Second,
		Duration:    10 * time.Second,
		StartedAt:   started,
		FinishedAt:  started.Add(3 * time.Second),
		RecordPath:  "memory_logs/20251018_143005/memory_usage_20251018_143005.txt",
		ChartPath:   "memory_logs/20251018_143005/memory_usage_20251018_143005.png",
		Samples: []record.Sample{
			{Timestamp: 1760797805.01, ResidentMB: 41.27},
			{Timestamp: 1760797806.02, ResidentMB: 41.3},
			{Timestamp: 1760797807.03, ResidentMB: 44.12},
		},
	}
}
