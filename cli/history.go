package cli

import (
	"github.com/spf13/cobra"
)

var (
	defOffset uint64 = 0
	defLimit  uint64 = 10
)

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [list|view|delete]",
		Short: "Archived runs",
		Long:  `List, view and delete archived monitoring runs.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		Long:  `List archived runs, most recent first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return ErrUsage
			}

			page, err := svc.ListRuns(cmd.Context(), defOffset, defLimit)
			if err != nil {
				logErrorCmd(*cmd, err)

				return err
			}
			logJSONCmd(*cmd, page)

			return nil
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "View run",
		Long:  `View an archived run including its samples.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return ErrUsage
			}

			r, err := svc.GetRun(cmd.Context(), args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return err
			}
			logJSONCmd(*cmd, r)

			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete run",
		Long:  `Delete an archived run. Record and chart files are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return ErrUsage
			}

			if err := svc.DeleteRun(cmd.Context(), args[0]); err != nil {
				logErrorCmd(*cmd, err)

				return err
			}
			logOKCmd(*cmd)

			return nil
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(viewCmd)
	cmd.AddCommand(deleteCmd)

	cmd.PersistentFlags().Uint64VarP(
		&defOffset,
		"offset",
		"o",
		defOffset,
		"Offset",
	)

	cmd.PersistentFlags().Uint64VarP(
		&defLimit,
		"limit",
		"l",
		defLimit,
		"Limit",
	)

	return cmd
}
