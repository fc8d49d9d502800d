package memmon

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/absmach/memmon/pkg/inspector"
	"github.com/absmach/memmon/pkg/mqtt"
	"github.com/absmach/memmon/pkg/storage"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml"
)

const (
	defLogLevel    = "info"
	defOutputDir   = "memory_logs"
	defSQLitePath  = "./memmon.db"
	defBadgerPath  = "./data/badger"
	defTraceRatio  = 1.0
	defMQTTQoS     = 1
	defMQTTTimeout = 30 * time.Second
	clientIDPrefix = "memmon-"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	LogLevel  string          `toml:"log_level" env:"MEMMON_LOG_LEVEL"`
	Output    OutputConfig    `toml:"output"`
	Inspector InspectorConfig `toml:"inspector"`
	Storage   storage.Config  `toml:"storage"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Tracing   TracingConfig   `toml:"tracing"`
	MQTT      mqtt.Config     `toml:"mqtt"`
}

type OutputConfig struct {
	Dir string `toml:"dir" env:"MEMMON_OUTPUT_DIR"`
}

type InspectorConfig struct {
	Backend string `toml:"backend" env:"MEMMON_INSPECTOR_BACKEND"`
}

type MetricsConfig struct {
	// Textfile is where metrics are written in the node exporter textfile
	// format when the process exits. Empty disables the export.
	Textfile string `toml:"textfile" env:"MEMMON_METRICS_TEXTFILE"`
}

type TracingConfig struct {
	OTELURL    string  `toml:"otel_url"    env:"MEMMON_OTEL_URL"`
	TraceRatio float64 `toml:"trace_ratio" env:"MEMMON_TRACE_RATIO"`
}

// LoadConfig reads the TOML file at path, fills unset fields with defaults
// and applies MEMMON_* environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		tree, err := toml.Load(string(data))
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		if err := tree.Unmarshal(&cfg); err != nil {
			return nil, fmt.Errorf("error unmarshaling config: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = clientIDPrefix + uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defLogLevel
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defOutputDir
	}
	if c.Inspector.Backend == "" {
		c.Inspector.Backend = inspector.BackendGopsutil
	}
	if c.Storage.Type == "" {
		c.Storage.Type = storage.TypeNone
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = defSQLitePath
	}
	if c.Storage.BadgerPath == "" {
		c.Storage.BadgerPath = defBadgerPath
	}
	if c.Tracing.TraceRatio == 0 {
		c.Tracing.TraceRatio = defTraceRatio
	}
	if c.MQTT.QoS == 0 {
		c.MQTT.QoS = defMQTTQoS
	}
	if c.MQTT.Timeout == 0 {
		c.MQTT.Timeout = defMQTTTimeout
	}
}

func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}

	switch c.Inspector.Backend {
	case inspector.BackendGopsutil, inspector.BackendProcfs:
	default:
		return fmt.Errorf("%w: %w: %s", ErrInvalidConfig, inspector.ErrUnknownBackend, c.Inspector.Backend)
	}

	switch c.Storage.Type {
	case storage.TypeNone, storage.TypeSQLite, storage.TypeBadger:
	case storage.TypeMemory:
		// Each invocation is a separate process, so nothing would survive
		// until the next history command.
		return fmt.Errorf("%w: storage type %q does not persist between runs", ErrInvalidConfig, c.Storage.Type)
	default:
		return fmt.Errorf("%w: %w: %s", ErrInvalidConfig, storage.ErrUnsupportedType, c.Storage.Type)
	}

	if c.Tracing.TraceRatio < 0 || c.Tracing.TraceRatio > 1 {
		return fmt.Errorf("%w: trace ratio %v not in [0, 1]", ErrInvalidConfig, c.Tracing.TraceRatio)
	}

	if c.MQTT.QoS > 2 {
		return fmt.Errorf("%w: mqtt qos %d", ErrInvalidConfig, c.MQTT.QoS)
	}

	return nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}

	return level, nil
}
