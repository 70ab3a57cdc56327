package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order",
	Long: `Runs sizes, departures, consolidate, match-operations, match-worktype,
analyze, weighted, follow-up and joining-time. Stages whose input folder is
not configured are skipped.`,
	Args: cobra.NoArgs,
	RunE: runAll,
}

func runAll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	o, closeStore, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer closeStore()

	results, err := o.RunAll(ctx)

	w := cmd.OutOrStdout()
	f := formatter()
	for i, res := range results {
		if i > 0 && !quietOut && !jsonOut {
			fmt.Fprintln(w)
		}
		if ferr := f.Format(res.Report, w); ferr != nil {
			return ferr
		}
	}
	return err
}
