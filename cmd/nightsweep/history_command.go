package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nightsweep/internal/report"
	"nightsweep/internal/runs"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past reprocessing runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := runs.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			records, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.ID,
					formatTimestamp(record.StartedAt),
					formatFinished(record.FinishedAt),
					strconv.Itoa(record.Total),
					strconv.Itoa(record.Succeeded),
					strconv.Itoa(record.Failed),
					strconv.Itoa(record.Skipped),
				})
			}
			fmt.Fprintln(out, report.Table(
				[]string{"Run", "Started", "Finished", "Total", "OK", "Failed", "Skipped"},
				rows, 4, 5, 6, 7))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its per-night outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := runs.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			record, outcomes, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:      %s\n", record.ID)
			fmt.Fprintf(out, "Started:  %s\n", formatTimestamp(record.StartedAt))
			fmt.Fprintf(out, "Finished: %s\n", formatFinished(record.FinishedAt))
			fmt.Fprintf(out, "Counters: succeeded=%d failed=%d skipped=%d total=%d\n\n",
				record.Succeeded, record.Failed, record.Skipped, record.Total)

			fmt.Fprintln(out, report.OutcomeTable(outcomes))
			return nil
		},
	}
}

func formatTimestamp(at time.Time) string {
	return at.Local().Format("2006-01-02 15:04:05")
}

func formatFinished(at *time.Time) string {
	if at == nil {
		return "-"
	}
	return formatTimestamp(*at)
}
