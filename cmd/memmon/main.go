package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"github.com/absmach/memmon"
	"github.com/absmach/memmon/cli"
	"github.com/absmach/memmon/monitor"
	monitormw "github.com/absmach/memmon/monitor/middleware"
	"github.com/absmach/memmon/pkg/inspector"
	"github.com/absmach/memmon/pkg/mqtt"
	pkgprometheus "github.com/absmach/memmon/pkg/prometheus"
	"github.com/absmach/memmon/pkg/render"
	"github.com/absmach/memmon/pkg/storage"
	"github.com/absmach/memmon/pkg/tracing"
	"github.com/absmach/memmon/sampler"
	samplermw "github.com/absmach/memmon/sampler/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	svcName = "memmon"
	pathEnv = ".env"
)

type flags struct {
	configPath string
	outputDir  string
	logLevel   string
}

type closer func(ctx context.Context) error

func main() {
	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	var (
		f       flags
		logger  = slog.Default()
		closers []closer
	)

	rootCmd := cli.NewMonitorCmd()
	rootCmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&f.outputDir, "output-dir", "", "Directory receiving run records and charts")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		svc, l, cs, err := setup(cmd.Context(), f, cmd.OutOrStdout())
		closers = cs
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "\nerror: %s\n\n", err)

			return err
		}
		logger = l
		cli.SetMonitorService(svc)

		return nil
	}

	rootCmd.AddCommand(cli.NewHistoryCmd())

	err := rootCmd.Execute()
	shutdown(context.Background(), logger, closers)
	if err != nil {
		os.Exit(1)
	}
}

func setup(ctx context.Context, f flags, progress io.Writer) (monitor.Service, *slog.Logger, []closer, error) {
	var closers []closer

	cfg, err := memmon.LoadConfig(f.configPath)
	if err != nil {
		return nil, nil, closers, fmt.Errorf("failed to load configuration: %w", err)
	}
	if f.outputDir != "" {
		cfg.Output.Dir = f.outputDir
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, closers, fmt.Errorf("failed to parse log level: %w", err)
	}
	logHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	otelURL, err := url.Parse(cfg.Tracing.OTELURL)
	if err != nil {
		return nil, logger, closers, fmt.Errorf("failed to parse otel url: %w", err)
	}
	tp, shutdownTracer, err := tracing.NewProvider(ctx, svcName, *otelURL, cfg.MQTT.ClientID, cfg.Tracing.TraceRatio)
	if err != nil {
		return nil, logger, closers, fmt.Errorf("failed to initialize opentelemetry: %w", err)
	}
	closers = append(closers, closer(shutdownTracer))
	tracer := tp.Tracer(svcName)

	insp, err := inspector.New(cfg.Inspector.Backend)
	if err != nil {
		return nil, logger, closers, err
	}

	smp := sampler.NewService(insp, sampler.SystemClock, progress, logger)
	smp = samplermw.Logging(logger, smp)
	smp = samplermw.Tracing(tracer, smp)
	if cfg.Metrics.Textfile != "" {
		registry := prometheus.NewRegistry()
		counter, latency, samples := pkgprometheus.MakeMetrics(registry, svcName, "sampler")
		smp = samplermw.Metrics(counter, latency, samples, smp)
		closers = append(closers, func(context.Context) error {
			return pkgprometheus.WriteTextfile(cfg.Metrics.Textfile, registry)
		})
	}

	runs, db, err := storage.NewRunRepository(cfg.Storage)
	if err != nil {
		return nil, logger, closers, fmt.Errorf("failed to open run archive: %w", err)
	}
	if db != nil {
		closers = append(closers, func(context.Context) error {
			return db.Close()
		})
	}

	var publisher mqtt.Publisher
	if cfg.MQTT.Address != "" {
		p, err := mqtt.NewPublisher(cfg.MQTT, logger)
		if err != nil {
			logger.Warn("MQTT publishing disabled", slog.Any("error", err))
		} else {
			publisher = p
			closers = append(closers, publisher.Disconnect)
		}
	}

	svc := monitor.NewService(cfg.Output.Dir, smp, render.NewPlotRenderer(0, 0), runs, publisher, sampler.SystemClock, logger)
	svc = monitormw.Logging(logger, svc)

	return svc, logger, closers, nil
}

func shutdown(ctx context.Context, logger *slog.Logger, closers []closer) {
	var g errgroup.Group
	for _, c := range closers {
		g.Go(func() error {
			return c(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s shutdown failed: %s", svcName, err))
	}
}
