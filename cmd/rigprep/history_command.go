package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "Show past batch runs",
		Long: "Without arguments, list recent batch runs newest first. With a run\n" +
			"id, list that run's per-job outcomes.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				jobs, err := store.RunJobs(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintf(out, "No jobs recorded for run %s\n", args[0])
					return nil
				}
				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						job.JobID,
						job.Base,
						string(job.Status),
						strconv.Itoa(job.Tracks),
						strconv.Itoa(job.SkippedClips),
						job.Error,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"JOB", "BASE", "STATUS", "TRACKS", "SKIPPED", "ERROR"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No batch runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					strconv.Itoa(run.Jobs),
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.SucceededWithSkips),
					strconv.Itoa(run.Failed),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"RUN", "STARTED", "JOBS", "OK", "WITH SKIPS", "FAILED"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}
