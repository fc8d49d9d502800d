package inspector_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/absmach/memmon/pkg/inspector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fakePID  = 4242
	fakeStat = "4242 (sleep) S 1 4242 4242 0 -1 4194560 107 0 0 0 0 0 0 0 20 0 1 0 123456 8630272 256 " +
		"18446744073709551615 1 1 0 0 0 0 0 0 0 0 0 0 17 3 0 0 0 0 0 0 0 0 0 0 0 0 0\n"
)

// absentPID is above the largest pid_max the kernel accepts.
const absentPID = int32(math.MaxInt32)

func TestNew(t *testing.T) {
	cases := []struct {
		desc    string
		backend string
		err     error
	}{
		{
			desc:    "default backend",
			backend: "",
		},
		{
			desc:    "gopsutil backend",
			backend: inspector.BackendGopsutil,
		},
		{
			desc:    "unknown backend",
			backend: "wmi",
			err:     inspector.ErrUnknownBackend,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			insp, err := inspector.New(tc.backend)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Nil(t, insp)

				return
			}
			require.NoError(t, err)
			assert.NotNil(t, insp)
		})
	}
}

func TestGopsutilInspectSelf(t *testing.T) {
	insp := inspector.NewGopsutil()

	res, err := insp.Inspect(context.Background(), int32(os.Getpid()))
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.NotEmpty(t, res.CommandLine)
	assert.Greater(t, res.ResidentMB, 0.0)
}

func TestGopsutilInspectAbsent(t *testing.T) {
	insp := inspector.NewGopsutil()

	res, err := insp.Inspect(context.Background(), absentPID)
	require.NoError(t, err)
	assert.Equal(t, inspector.Result{Found: false}, res)
}

func TestProcfsInspectSelf(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("procfs backend requires linux")
	}

	insp, err := inspector.NewProcfs()
	require.NoError(t, err)

	res, err := insp.Inspect(context.Background(), int32(os.Getpid()))
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.NotEmpty(t, res.CommandLine)
	assert.Greater(t, res.ResidentMB, 0.0)
}

func TestProcfsInspectFixture(t *testing.T) {
	root := t.TempDir()
	procDir := filepath.Join(root, "4242")
	require.NoError(t, os.MkdirAll(procDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(procDir, "cmdline"), []byte("sleep\x0030\x00"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(procDir, "stat"), []byte(fakeStat), 0o644))

	insp, err := inspector.NewProcfsAt(root)
	require.NoError(t, err)

	res, err := insp.Inspect(context.Background(), fakePID)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "sleep 30", res.CommandLine)
	assert.InDelta(t, float64(256*os.Getpagesize())/(1024*1024), res.ResidentMB, 1e-9)
}

func TestProcfsInspectVanished(t *testing.T) {
	cases := []struct {
		desc  string
		setup func(t *testing.T, procDir string)
	}{
		{
			desc:  "pid directory missing",
			setup: func(t *testing.T, procDir string) {},
		},
		{
			desc: "stat disappears after cmdline",
			setup: func(t *testing.T, procDir string) {
				require.NoError(t, os.MkdirAll(procDir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(procDir, "cmdline"), []byte("sleep\x00"), 0o644))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			root := t.TempDir()
			tc.setup(t, filepath.Join(root, "4242"))

			insp, err := inspector.NewProcfsAt(root)
			require.NoError(t, err)

			res, err := insp.Inspect(context.Background(), fakePID)
			require.NoError(t, err)
			assert.False(t, res.Found)
		})
	}
}
