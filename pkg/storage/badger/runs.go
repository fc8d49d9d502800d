package badger

import (
	"context"
	"fmt"
	"math"

	pkgerrors "github.com/absmach/memmon/pkg/errors"
	"github.com/absmach/memmon/pkg/run"
	"github.com/fxamacker/cbor/v2"
)

const (
	runPrefix   = "run:"
	indexPrefix = "idx:run:"
)

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}

	return em
}

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

func runKey(id string) string {
	return runPrefix + id
}

// indexKey sorts newer runs first under indexPrefix.
func indexKey(r run.Run) string {
	return fmt.Sprintf("%s%019d:%s", indexPrefix, math.MaxInt64-r.StartedAt.UnixNano(), r.ID)
}

func (r *runRepo) Create(ctx context.Context, rn run.Run) error {
	if rn.ID == "" {
		return pkgerrors.ErrEmptyKey
	}

	exists, err := r.db.exists([]byte(runKey(rn.ID)))
	if err != nil {
		return err
	}
	if exists {
		return pkgerrors.ErrEntityExists
	}

	val, err := encMode.Marshal(rn)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return r.db.setAll(map[string][]byte{
		runKey(rn.ID): val,
		indexKey(rn):  []byte(rn.ID),
	})
}

func (r *runRepo) Get(ctx context.Context, id string) (run.Run, error) {
	if id == "" {
		return run.Run{}, pkgerrors.ErrEmptyKey
	}

	val, err := r.db.get([]byte(runKey(id)))
	if err != nil {
		return run.Run{}, err
	}

	var rn run.Run
	if err := cbor.Unmarshal(val, &rn); err != nil {
		return run.Run{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return rn, nil
}

func (r *runRepo) List(ctx context.Context, offset, limit uint64) ([]run.Run, uint64, error) {
	prefix := []byte(indexPrefix)
	total, err := r.db.countWithPrefix(prefix)
	if err != nil {
		return nil, 0, err
	}

	ids, err := r.db.listWithPrefix(prefix, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	runs := make([]run.Run, 0, len(ids))
	for _, id := range ids {
		rn, err := r.Get(ctx, string(id))
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, rn)
	}

	return runs, total, nil
}

func (r *runRepo) Delete(ctx context.Context, id string) error {
	rn, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	return r.db.deleteAll([]byte(runKey(id)), []byte(indexKey(rn)))
}
