package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/attrition/internal/output"
	"github.com/rohankatakam/attrition/internal/pipeline"
)

// stageCommand builds the subcommand that runs one pipeline stage
func stageCommand(name, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd.Context(), name, cmd.OutOrStdout())
		},
	}
}

func runStage(ctx context.Context, name string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	o, closeStore, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := o.Run(ctx, name)
	if err != nil {
		return err
	}
	return formatter().Format(res.Report, w)
}

// newOrchestrator opens the run archive when one is configured
func newOrchestrator() (*pipeline.Orchestrator, func(), error) {
	if cfg.Output.ArchivePath == "" {
		return pipeline.NewOrchestrator(cfg, nil, logger), func() {}, nil
	}

	store, closeStore, err := openArchive()
	if err != nil {
		return nil, nil, err
	}
	return pipeline.NewOrchestrator(cfg, store, logger), closeStore, nil
}

func verbosity() output.VerbosityLevel {
	switch {
	case quietOut:
		return output.VerbosityQuiet
	case jsonOut:
		return output.VerbosityJSON
	}
	return output.GetDefaultVerbosity()
}

func formatter() output.Formatter {
	return output.NewFormatter(verbosity())
}
