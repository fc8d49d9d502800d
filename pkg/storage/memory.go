package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/absmach/memmon/pkg/errors"
	"github.com/absmach/memmon/pkg/run"
)

type memoryRunRepo struct {
	sync.RWMutex

	runs map[string]run.Run
}

// NewMemoryRunRepository returns an archive that lives as long as the
// process. It is safe for concurrent use.
func NewMemoryRunRepository() RunRepository {
	return &memoryRunRepo{
		runs: make(map[string]run.Run),
	}
}

func (r *memoryRunRepo) Create(_ context.Context, rn run.Run) error {
	if rn.ID == "" {
		return errors.ErrEmptyKey
	}

	r.Lock()
	defer r.Unlock()

	if _, ok := r.runs[rn.ID]; ok {
		return errors.ErrEntityExists
	}
	r.runs[rn.ID] = rn

	return nil
}

func (r *memoryRunRepo) Get(_ context.Context, id string) (run.Run, error) {
	if id == "" {
		return run.Run{}, errors.ErrEmptyKey
	}

	r.RLock()
	defer r.RUnlock()

	rn, ok := r.runs[id]
	if !ok {
		return run.Run{}, errors.ErrNotFound
	}

	return rn, nil
}

func (r *memoryRunRepo) List(_ context.Context, offset, limit uint64) ([]run.Run, uint64, error) {
	r.RLock()
	runs := make([]run.Run, 0, len(r.runs))
	for _, rn := range r.runs {
		runs = append(runs, rn)
	}
	r.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}

		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	total := uint64(len(runs))
	if offset >= total {
		return []run.Run{}, total, nil
	}

	end := offset + limit
	if end > total || end < offset {
		end = total
	}

	return runs[offset:end], total, nil
}

func (r *memoryRunRepo) Delete(_ context.Context, id string) error {
	if id == "" {
		return errors.ErrEmptyKey
	}

	r.Lock()
	defer r.Unlock()

	if _, ok := r.runs[id]; !ok {
		return errors.ErrNotFound
	}
	delete(r.runs, id)

	return nil
}
