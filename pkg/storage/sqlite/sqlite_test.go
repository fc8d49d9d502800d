package sqlite_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgerrors "github.com/absmach/memmon/pkg/errors"
	"github.com/absmach/memmon/pkg/run"
	"github.com/absmach/memmon/pkg/storage/sqlite"
	"github.com/absmach/memmon/pkg/storage/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDB    *sqlite.Database
	invalidID = "invalid-id-that-does-not-exist"
)

func TestMain(m *testing.M) {
	tmpDir := os.TempDir()
	dbPath := filepath.Join(tmpDir, "test_"+uuid.NewString()+".db")

	var err error
	testDB, err = sqlite.NewDatabase(dbPath)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	testDB.Close()
	os.Remove(dbPath)

	os.Exit(code)
}

func TestMigrateIsIdempotent(t *testing.T) {
	assert.NoError(t, testDB.Migrate())
}

func TestRunRepository_Create(t *testing.T) {
	repo := sqlite.NewRunRepository(testDB)
	ctx := context.Background()

	existing := testutil.TestRun(uuid.NewString(), 0)
	require.NoError(t, repo.Create(ctx, existing))
	defer repo.Delete(ctx, existing.ID)

	cases := []struct {
		desc string
		run  run.Run
		err  error
	}{
		{
			desc: "create new run successfully",
			run:  testutil.TestRun(uuid.NewString(), time.Minute),
			err:  nil,
		},
		{
			desc: "create run without samples",
			run: func() run.Run {
				r := testutil.TestRun(uuid.NewString(), 2*time.Minute)
				r.Samples = nil
				r.ChartPath = ""
				r.CommandLine = ""
				return r
			}(),
			err: nil,
		},
		{
			desc: "create run with empty id",
			run:  testutil.TestRun("", 3*time.Minute),
			err:  pkgerrors.ErrEmptyKey,
		},
		{
			desc: "create duplicate run",
			run:  existing,
			err:  pkgerrors.ErrEntityExists,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			err := repo.Create(ctx, tc.run)
			assert.ErrorIs(t, err, tc.err, fmt.Sprintf("%s: expected error %v, got %v", tc.desc, tc.err, err))
			if tc.err == nil {
				got, err := repo.Get(ctx, tc.run.ID)
				require.NoError(t, err)
				assert.Equal(t, tc.run, got)

				repo.Delete(ctx, tc.run.ID)
			}
		})
	}
}

func TestRunRepository_Get(t *testing.T) {
	repo := sqlite.NewRunRepository(testDB)
	ctx := context.Background()

	testRun := testutil.TestRun(uuid.NewString(), 0)
	require.NoError(t, repo.Create(ctx, testRun))
	defer repo.Delete(ctx, testRun.ID)

	cases := []struct {
		desc  string
		runID string
		err   error
	}{
		{
			desc:  "get existing run",
			runID: testRun.ID,
			err:   nil,
		},
		{
			desc:  "get non-existing run",
			runID: invalidID,
			err:   pkgerrors.ErrNotFound,
		},
		{
			desc:  "get run with empty id",
			runID: "",
			err:   pkgerrors.ErrEmptyKey,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := repo.Get(ctx, tc.runID)
			assert.ErrorIs(t, err, tc.err, fmt.Sprintf("%s: expected error %v, got %v", tc.desc, tc.err, err))
			if tc.err == nil {
				assert.Equal(t, testRun, got)
			}
		})
	}
}

func TestRunRepository_List(t *testing.T) {
	db, err := sqlite.NewDatabase(filepath.Join(t.TempDir(), "list.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		r := testutil.TestRun(uuid.NewString(), time.Duration(i)*time.Minute)
		require.NoError(t, repo.Create(ctx, r))
		ids = append(ids, r.ID)
	}

	cases := []struct {
		desc   string
		offset uint64
		limit  uint64
		want   []string
	}{
		{
			desc:   "newest first",
			offset: 0,
			limit:  10,
			want:   []string{ids[4], ids[3], ids[2], ids[1], ids[0]},
		},
		{
			desc:   "with offset and limit",
			offset: 1,
			limit:  2,
			want:   []string{ids[3], ids[2]},
		},
		{
			desc:   "offset past the end",
			offset: 10,
			limit:  2,
			want:   []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			runs, total, err := repo.List(ctx, tc.offset, tc.limit)
			require.NoError(t, err)
			assert.Equal(t, uint64(5), total)

			got := []string{}
			for _, r := range runs {
				got = append(got, r.ID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRunRepository_Delete(t *testing.T) {
	repo := sqlite.NewRunRepository(testDB)
	ctx := context.Background()

	testRun := testutil.TestRun(uuid.NewString(), 0)
	require.NoError(t, repo.Create(ctx, testRun))

	require.NoError(t, repo.Delete(ctx, testRun.ID))

	_, err := repo.Get(ctx, testRun.ID)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)

	err = repo.Delete(ctx, testRun.ID)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestRunRepository_ListBreaksTiesByID(t *testing.T) {
	db, err := sqlite.NewDatabase(filepath.Join(t.TempDir(), "ties.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	ids := []string{"run-c", "run-a", "run-b"}
	for _, id := range ids {
		require.NoError(t, repo.Create(ctx, testutil.TestRun(id, 0)))
	}
	require.NoError(t, repo.Create(ctx, testutil.TestRun("run-z", time.Minute)))

	cases := []struct {
		desc   string
		offset uint64
		limit  uint64
		want   []string
	}{
		{
			desc:   "newest first then ascending id",
			offset: 0,
			limit:  10,
			want:   []string{"run-z", "run-a", "run-b", "run-c"},
		},
		{
			desc:   "page inside a tie",
			offset: 2,
			limit:  1,
			want:   []string{"run-b"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			runs, total, err := repo.List(ctx, tc.offset, tc.limit)
			require.NoError(t, err)
			assert.Equal(t, uint64(4), total)

			got := []string{}
			for _, r := range runs {
				got = append(got, r.ID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
