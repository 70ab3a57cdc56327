package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/attrition/internal/output"
	"github.com/rohankatakam/attrition/internal/storage"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse the run archive",
	Long: `Reads back what earlier stages stored in the SQLite run archive
(--archive or output.archive_path).`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the projects, developers and tests of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsLimit int

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs to list")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openArchive()
	if err != nil {
		return err
	}
	defer closeStore()

	runs, err := store.ListRuns(commandContext(cmd), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	summaries := make([]output.RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = runSummary(r)
	}
	return output.FormatRuns(summaries, verbosity(), cmd.OutOrStdout())
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openArchive()
	if err != nil {
		return err
	}
	defer closeStore()

	detail, err := loadRunDetail(commandContext(cmd), store, args[0])
	if err != nil {
		return err
	}
	return output.FormatRunDetail(detail, verbosity(), cmd.OutOrStdout())
}

// openArchive opens the configured run archive; browsing needs one
func openArchive() (storage.Store, func(), error) {
	if cfg.Output.ArchivePath == "" {
		return nil, nil, fmt.Errorf("no run archive configured (use --archive or output.archive_path)")
	}
	store, err := storage.NewSQLiteStore(cfg.Output.ArchivePath, logger)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close run archive")
		}
	}
	return store, closeStore, nil
}

func loadRunDetail(ctx context.Context, store storage.Store, id string) (*output.RunDetail, error) {
	run, err := store.GetRun(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, err
	}

	projects, err := store.GetProjects(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	developers, err := store.GetDevelopers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load developers: %w", err)
	}
	tests, err := store.GetTestResults(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load test results: %w", err)
	}

	detail := &output.RunDetail{
		Run:        runSummary(run),
		Config:     run.Config,
		Developers: len(developers),
	}
	for _, p := range projects {
		rec := p.Record()
		departure := output.Float(math.NaN())
		if rec.Departure.Defined {
			departure = output.Float(rec.Departure.Value)
		}
		detail.Projects = append(detail.Projects, output.ArchivedProject{
			Project:   p.Project,
			RowCount:  p.RowCount,
			Size:      p.SizeClass,
			Departure: departure,
			Left:      p.LeftCount,
			Reference: p.ReferenceCount,
		})
	}
	for _, d := range developers {
		if d.Left {
			detail.Departed++
		}
	}
	for _, t := range tests {
		detail.Tests = append(detail.Tests, output.TestSummary{
			Name:        t.Name,
			Statistic:   nullable(t.Statistic.Float64, t.Statistic.Valid),
			PValue:      nullable(t.PValue.Float64, t.PValue.Valid),
			DF:          nullable(t.DF.Float64, t.DF.Valid),
			Significant: t.Significant,
		})
	}
	return detail, nil
}

func runSummary(r *storage.Run) output.RunSummary {
	s := output.RunSummary{
		ID:        r.ID,
		Stage:     r.Stage,
		StartedAt: r.StartedAt,
		Records:   r.Records,
		Skipped:   r.Skipped,
		Warnings:  r.Warnings,
	}
	if r.FinishedAt.Valid {
		finished := r.FinishedAt.Time
		s.FinishedAt = &finished
	}
	return s
}

// nullable turns a NULL column back into NaN
func nullable(v float64, valid bool) output.Float {
	if !valid {
		return output.Float(math.NaN())
	}
	return output.Float(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
