package memmon_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/absmach/memmon"
	"github.com/absmach/memmon/pkg/inspector"
	"github.com/absmach/memmon/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `log_level = "debug"

[output]
dir = "/var/lib/memmon"

[inspector]
backend = "procfs"

[storage]
type = "sqlite"
sqlite_path = "/var/lib/memmon/memmon.db"

[metrics]
textfile = "/var/lib/node_exporter/memmon.prom"

[tracing]
otel_url = "http://localhost:4318"
trace_ratio = 0.5

[mqtt]
address = "tcp://localhost:1883"
qos = 2
timeout = "5s"
client_id = "memmon-host-1"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := memmon.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "memory_logs", cfg.Output.Dir)
	assert.Equal(t, inspector.BackendGopsutil, cfg.Inspector.Backend)
	assert.Equal(t, storage.TypeNone, cfg.Storage.Type)
	assert.Equal(t, "./memmon.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "./data/badger", cfg.Storage.BadgerPath)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.Empty(t, cfg.Tracing.OTELURL)
	assert.Equal(t, 1.0, cfg.Tracing.TraceRatio)
	assert.Empty(t, cfg.MQTT.Address)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, 30*time.Second, cfg.MQTT.Timeout)
	assert.True(t, strings.HasPrefix(cfg.MQTT.ClientID, "memmon-"))
}

func TestLoadConfigFile(t *testing.T) {
	cfg, err := memmon.LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/lib/memmon", cfg.Output.Dir)
	assert.Equal(t, inspector.BackendProcfs, cfg.Inspector.Backend)
	assert.Equal(t, storage.TypeSQLite, cfg.Storage.Type)
	assert.Equal(t, "/var/lib/memmon/memmon.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "./data/badger", cfg.Storage.BadgerPath)
	assert.Equal(t, "/var/lib/node_exporter/memmon.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "http://localhost:4318", cfg.Tracing.OTELURL)
	assert.Equal(t, 0.5, cfg.Tracing.TraceRatio)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Address)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.Equal(t, 5*time.Second, cfg.MQTT.Timeout)
	assert.Equal(t, "memmon-host-1", cfg.MQTT.ClientID)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MEMMON_LOG_LEVEL", "warn")
	t.Setenv("MEMMON_OUTPUT_DIR", "/tmp/memmon")
	t.Setenv("MEMMON_STORAGE_TYPE", "badger")
	t.Setenv("MEMMON_MQTT_QOS", "0")
	t.Setenv("MEMMON_MQTT_TIMEOUT", "2s")

	cfg, err := memmon.LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/memmon", cfg.Output.Dir)
	assert.Equal(t, storage.TypeBadger, cfg.Storage.Type)
	assert.Equal(t, byte(0), cfg.MQTT.QoS)
	assert.Equal(t, 2*time.Second, cfg.MQTT.Timeout)
	assert.Equal(t, inspector.BackendProcfs, cfg.Inspector.Backend)
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		desc    string
		path    func(t *testing.T) string
		env     map[string]string
		invalid bool
	}{
		{
			desc: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.toml") },
		},
		{
			desc: "malformed toml",
			path: func(t *testing.T) string { return writeConfig(t, "log_level = ") },
		},
		{
			desc:    "unknown log level",
			path:    func(t *testing.T) string { return writeConfig(t, `log_level = "verbose"`) },
			invalid: true,
		},
		{
			desc:    "unknown inspector backend",
			path:    func(t *testing.T) string { return writeConfig(t, "[inspector]\nbackend = \"ps\"") },
			invalid: true,
		},
		{
			desc:    "unknown storage type",
			path:    func(t *testing.T) string { return "" },
			env:     map[string]string{"MEMMON_STORAGE_TYPE": "postgres"},
			invalid: true,
		},
		{
			desc:    "memory archive does not outlive the process",
			path:    func(t *testing.T) string { return writeConfig(t, "[storage]\ntype = \"memory\"") },
			invalid: true,
		},
		{
			desc:    "trace ratio out of range",
			path:    func(t *testing.T) string { return "" },
			env:     map[string]string{"MEMMON_TRACE_RATIO": "1.5"},
			invalid: true,
		},
		{
			desc:    "mqtt qos out of range",
			path:    func(t *testing.T) string { return "" },
			env:     map[string]string{"MEMMON_MQTT_QOS": "3"},
			invalid: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := memmon.LoadConfig(tc.path(t))
			require.Error(t, err)
			if tc.invalid {
				assert.ErrorIs(t, err, memmon.ErrInvalidConfig)
			}
		})
	}
}
