package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/absmach/memmon/monitor"
	"github.com/spf13/cobra"
)

var svc monitor.Service

func SetMonitorService(s monitor.Service) {
	svc = s
}

// NewMonitorCmd returns the command that samples one process. It is meant
// to be used as the root command.
func NewMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memmon <pid> <interval> <duration>",
		Short: "Monitor process memory usage",
		Long: `Sample the resident memory of a process every <interval> seconds for
<duration> seconds, save the series to a text record and render it as a chart.

Examples:
  # Sample PID 4242 every second for one minute
  memmon 4242 1 60`,
		// Args runs before the persistent pre-run hooks that load configuration.
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				logUsageCmd(*cmd, cmd.Use)

				return ErrUsage
			}
			if _, err := parseRequest(args); err != nil {
				logErrorCmd(*cmd, err)

				return err
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseRequest(args)
			if err != nil {
				return err
			}

			rpt, err := svc.Monitor(cmd.Context(), req)
			if rpt.ID != "" {
				logJSONCmd(*cmd, rpt)
			}
			if err != nil {
				logErrorCmd(*cmd, err)

				return err
			}

			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		err = fmt.Errorf("%w: %w", ErrUsage, err)
		logErrorCmd(*c, err)

		return err
	})

	return cmd
}

func parseRequest(args []string) (monitor.Request, error) {
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		return monitor.Request{}, fmt.Errorf("%w: pid: %w", ErrUsage, err)
	}

	interval, err := strconv.Atoi(args[1])
	if err != nil {
		return monitor.Request{}, fmt.Errorf("%w: interval: %w", ErrUsage, err)
	}

	duration, err := strconv.Atoi(args[2])
	if err != nil {
		return monitor.Request{}, fmt.Errorf("%w: duration: %w", ErrUsage, err)
	}

	if int64(pid) != int64(int32(pid)) {
		return monitor.Request{}, fmt.Errorf("%w: pid %d out of range", ErrUsage, pid)
	}

	return monitor.Request{
		PID:      int32(pid),
		Interval: time.Duration(interval) * time.Second,
		Duration: time.Duration(duration) * time.Second,
	}, nil
}
