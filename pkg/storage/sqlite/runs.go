package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/absmach/memmon/pkg/errors"
	"github.com/absmach/memmon/pkg/record"
	"github.com/absmach/memmon/pkg/run"
	sqlite3 "github.com/mattn/go-sqlite3"
)

type RunRepository interface {
	Create(ctx context.Context, r run.Run) error
	Get(ctx context.Context, id string) (run.Run, error)
	List(ctx context.Context, offset, limit uint64) ([]run.Run, uint64, error)
	Delete(ctx context.Context, id string) error
}

type runRepo struct {
	db *Database
}

func NewRunRepository(db *Database) RunRepository {
	return &runRepo{db: db}
}

type dbRun struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	PID         int32     `db:"pid"`
	CommandLine string    `db:"command_line"`
	IntervalNS  int64     `db:"interval_ns"`
	DurationNS  int64     `db:"duration_ns"`
	RecordPath  string    `db:"record_path"`
	ChartPath   string    `db:"chart_path"`
	StartedAt   time.Time `db:"started_at"`
	FinishedAt  time.Time `db:"finished_at"`
}

type dbSample struct {
	Timestamp  float64 `db:"timestamp"`
	ResidentMB float64 `db:"resident_mb"`
}

const runColumns = `id, name, pid, command_line, interval_ns, duration_ns, record_path, chart_path, started_at, finished_at`

func (r *runRepo) Create(ctx context.Context, rn run.Run) error {
	if rn.ID == "" {
		return pkgerrors.ErrEmptyKey
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rn.ID, rn.Name, rn.PID, rn.CommandLine,
		int64(rn.Interval), int64(rn.Duration),
		rn.RecordPath, rn.ChartPath,
		rn.StartedAt.UTC(), rn.FinishedAt.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return pkgerrors.ErrEntityExists
		}

		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	for i, s := range rn.Samples {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_samples (run_id, seq, timestamp, resident_mb) VALUES (?, ?, ?, ?)`,
			rn.ID, i, s.Timestamp, s.ResidentMB,
		); err != nil {
			return fmt.Errorf("%w: %w", ErrCreate, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	return nil
}

func (r *runRepo) Get(ctx context.Context, id string) (run.Run, error) {
	if id == "" {
		return run.Run{}, pkgerrors.ErrEmptyKey
	}

	var dbr dbRun
	if err := r.db.GetContext(ctx, &dbr, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run.Run{}, pkgerrors.ErrNotFound
		}

		return run.Run{}, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	var samples []dbSample
	if err := r.db.SelectContext(ctx, &samples,
		`SELECT timestamp, resident_mb FROM run_samples WHERE run_id = ? ORDER BY seq`, id,
	); err != nil {
		return run.Run{}, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	return toRun(dbr, samples), nil
}

func (r *runRepo) List(ctx context.Context, offset, limit uint64) ([]run.Run, uint64, error) {
	var total uint64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM runs`); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM runs ORDER BY started_at DESC, id ASC LIMIT ? OFFSET ?`, limit, offset,
	); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	runs := make([]run.Run, 0, len(ids))
	for _, id := range ids {
		rn, err := r.Get(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, rn)
	}

	return runs, total, nil
}

func (r *runRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}
	if n == 0 {
		return pkgerrors.ErrNotFound
	}

	return nil
}

func toRun(dbr dbRun, samples []dbSample) run.Run {
	rn := run.Run{
		ID:          dbr.ID,
		Name:        dbr.Name,
		PID:         dbr.PID,
		CommandLine: dbr.CommandLine,
		Interval:    time.Duration(dbr.IntervalNS),
		Duration:    time.Duration(dbr.DurationNS),
		StartedAt:   dbr.StartedAt.UTC(),
		FinishedAt:  dbr.FinishedAt.UTC(),
		RecordPath:  dbr.RecordPath,
		ChartPath:   dbr.ChartPath,
	}

	for _, s := range samples {
		rn.Samples = append(rn.Samples, record.Sample{
			Timestamp:  s.Timestamp,
			ResidentMB: s.ResidentMB,
		})
	}

	return rn
}
