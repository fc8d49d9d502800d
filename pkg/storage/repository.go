package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/absmach/memmon/pkg/run"
	"github.com/absmach/memmon/pkg/storage/badger"
	"github.com/absmach/memmon/pkg/storage/sqlite"
)

const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
	TypeBadger = "badger"
)

// RunRepository archives finished runs. List returns the most recent runs
// first.
type RunRepository interface {
	Create(ctx context.Context, r run.Run) error
	Get(ctx context.Context, id string) (run.Run, error)
	List(ctx context.Context, offset, limit uint64) ([]run.Run, uint64, error)
	Delete(ctx context.Context, id string) error
}

type Config struct {
	Type       string `toml:"type"        env:"MEMMON_STORAGE_TYPE"`
	SQLitePath string `toml:"sqlite_path" env:"MEMMON_SQLITE_PATH"`
	BadgerPath string `toml:"badger_path" env:"MEMMON_BADGER_PATH"`
}

// NewRunRepository opens the archive described by cfg. The returned closer is
// nil for backends without a persistent connection; both values are nil when
// the archive is disabled.
func NewRunRepository(cfg Config) (RunRepository, io.Closer, error) {
	switch cfg.Type {
	case TypeNone, "":
		return nil, nil, nil
	case TypeMemory:
		return NewMemoryRunRepository(), nil, nil
	case TypeSQLite:
		db, err := sqlite.NewDatabase(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		return sqlite.NewRunRepository(db), db, nil
	case TypeBadger:
		db, err := badger.NewDatabase(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}

		return badger.NewRunRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, cfg.Type)
	}
}
