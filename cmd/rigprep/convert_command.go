package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rigprep/internal/batch"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var clipFlags []string

	cmd := &cobra.Command{
		Use:   "convert BASE_GLB",
		Short: "Normalize one character asset and merge its clips",
		Long: "Normalize the rig hierarchy of a single GLB and merge the listed\n" +
			"animation clips onto it in flag order. Without --clip the asset is\n" +
			"normalized and exported as-is.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := batch.Job{Base: args[0], Output: outputFlag}
			for _, raw := range clipFlags {
				name, source, found := strings.Cut(raw, "=")
				if !found || strings.TrimSpace(name) == "" || strings.TrimSpace(source) == "" {
					return fmt.Errorf("invalid --clip %q: expected NAME=SOURCE", raw)
				}
				job.Clips = append(job.Clips, batch.ClipSpec{
					Name:   strings.TrimSpace(name),
					Source: strings.TrimSpace(source),
				})
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

			summary, err := driver.Run(cmd.Context(), &batch.Worklist{Jobs: []batch.Job{job}})
			if err != nil {
				return err
			}

			result := summary.Results[0]
			if result.Err != nil {
				return fmt.Errorf("convert %s: %w", job.Base, result.Err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d tracks", result.Output, result.Tracks)
			if result.SkippedClips > 0 {
				fmt.Fprintf(out, ", %d clips skipped", result.SkippedClips)
			}
			fmt.Fprintln(out, ")")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (default: base name in the output directory)")
	cmd.Flags().StringArrayVar(&clipFlags, "clip", nil, "Clip to merge as NAME=SOURCE; repeat in the desired track order")
	return cmd
}
