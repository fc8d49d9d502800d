package run

import (
	"time"

	"github.com/absmach/memmon/pkg/record"
)

// Run is the archived summary of a single monitoring run.
type Run struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	PID         int32           `json:"pid"`
	CommandLine string          `json:"command_line"`
	Interval    time.Duration   `json:"interval"`
	Duration    time.Duration   `json:"duration"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	RecordPath  string          `json:"record_path"`
	ChartPath   string          `json:"chart_path,omitempty"`
	Samples     []record.Sample `json:"samples,omitempty"`
}

type RunPage struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
	Total  uint64 `json:"total"`
	Runs   []Run  `json:"runs"`
}
