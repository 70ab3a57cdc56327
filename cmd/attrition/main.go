package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/attrition/internal/config"
	"github.com/rohankatakam/attrition/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile   string
	verbose   bool
	outputDir string
	archive   string
	quietOut  bool
	jsonOut   bool
	logger    *logrus.Logger
	cfg       *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "attrition",
	Short: "Developer attrition analysis for open-source projects",
	Long: `attrition relates developer departures to project size, work type,
behaviour and joining time. Each subcommand is one stage of the pipeline;
"run" executes them all in order.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			if cfgFile != "" {
				return err
			}
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}

		// Flags win over file and environment
		if outputDir != "" {
			cfg.Paths.OutputDir = outputDir
		}
		if archive != "" {
			cfg.Output.ArchivePath = archive
		}

		return logging.Initialize(logging.DefaultConfig(verbose || cfg.Logging.Debug, cfg.Logging.Directory))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./attrition.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "output folder (overrides paths.output_dir)")
	rootCmd.PersistentFlags().StringVar(&archive, "archive", "", "SQLite run archive (overrides output.archive_path)")
	rootCmd.PersistentFlags().BoolVar(&quietOut, "quiet", false, "one-line summary per stage")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable JSON reports")
	rootCmd.MarkFlagsMutuallyExclusive("quiet", "json")

	rootCmd.SetVersionTemplate(`attrition {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(sizesCmd)
	rootCmd.AddCommand(departuresCmd)
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(matchOperationsCmd)
	rootCmd.AddCommand(matchWorkTypeCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(weightedCmd)
	rootCmd.AddCommand(followUpCmd)
	rootCmd.AddCommand(joiningTimeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
}
