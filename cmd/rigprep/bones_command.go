package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rigprep/internal/bonemap"
)

func newBonesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "bones",
		Short:       "Print the bone name correspondence table",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, bonemap.Size())
			for _, entry := range bonemap.Entries() {
				rows = append(rows, []string{entry.Source, entry.Canonical})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"SOURCE", "CANONICAL"}, rows, nil))
			fmt.Fprintf(out, "Table version %s, %d entries\n", bonemap.Version, bonemap.Size())
			return nil
		},
	}
}
