package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rigprep/internal/batch"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch WORKLIST_TOML",
		Short: "Run every job in a worklist",
		Long: "Process a TOML worklist job by job. A failed job is recorded and\n" +
			"the batch continues; the command exits non-zero when any job failed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wl, err := batch.LoadWorklist(args[0])
			if err != nil {
				return err
			}

			logger, closeLog, err := ctx.newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			driver, cleanup, err := ctx.newDriver(logger)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := driver.Run(cmd.Context(), wl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummary(summary))
			succeeded, withSkips, failed := summary.Counts()
			fmt.Fprintf(out, "Run %s: %d succeeded, %d with skips, %d failed\n",
				summary.RunID, succeeded, withSkips, failed)

			if summary.Failed() {
				return fmt.Errorf("%d of %d jobs failed", failed, len(summary.Results))
			}
			return nil
		},
	}
	return cmd
}

func renderSummary(summary *batch.Summary) string {
	headers := []string{"JOB", "BASE", "OUTPUT", "STATUS", "TRACKS", "SKIPPED", "ERROR"}
	rows := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		rows = append(rows, []string{
			r.JobID,
			r.Base,
			r.Output,
			string(r.Status),
			strconv.Itoa(r.Tracks),
			strconv.Itoa(r.SkippedClips),
			errMsg,
		})
	}
	return renderTable(headers, rows, []columnAlignment{
		alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft,
	})
}
