package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings. Every pipeline stage receives the
// parts it needs explicitly; nothing reads package-level paths.
type Config struct {
	Paths          PathsConfig          `mapstructure:"paths" yaml:"paths"`
	Conventions    ConventionsConfig    `mapstructure:"conventions" yaml:"conventions"`
	Classification ClassificationConfig `mapstructure:"classification" yaml:"classification"`
	Analysis       AnalysisConfig       `mapstructure:"analysis" yaml:"analysis"`
	Output         OutputConfig         `mapstructure:"output" yaml:"output"`
	Logging        LoggingConfig        `mapstructure:"logging" yaml:"logging"`
}

// PathsConfig lists input folders and the output folder
type PathsConfig struct {
	IdentitiesDir  string `mapstructure:"identities_dir" yaml:"identities_dir"`   // <project>_identities.csv
	DepartedDir    string `mapstructure:"departed_dir" yaml:"departed_dir"`       // <project>_identities_filtered.csv
	OperationsDir  string `mapstructure:"operations_dir" yaml:"operations_dir"`   // <project>_operations.csv
	WorkTypeDir    string `mapstructure:"work_type_dir" yaml:"work_type_dir"`     // matched_<project>_identities.csv
	JoiningTimeDir string `mapstructure:"joining_time_dir" yaml:"joining_time_dir"` // free-form joining-time CSVs
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Convention is a file naming convention: <prefix><key><suffix>
type Convention struct {
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	Suffix string `mapstructure:"suffix" yaml:"suffix"`
}

type ConventionsConfig struct {
	Identities Convention `mapstructure:"identities" yaml:"identities"`
	Departed   Convention `mapstructure:"departed" yaml:"departed"`
	Operations Convention `mapstructure:"operations" yaml:"operations"`
	WorkType   Convention `mapstructure:"work_type" yaml:"work_type"`
}

type ClassificationConfig struct {
	// SizeThresholds are the row-count cuts between small, medium and large
	SizeThresholds []float64 `mapstructure:"size_thresholds" yaml:"size_thresholds"`
	// JoinTiming maps raw "Date Comparison" labels to early|late
	JoinTiming map[string]string `mapstructure:"join_timing" yaml:"join_timing"`
	// WorkTypes restricts "Main Work Type" to a closed set (empty = any)
	WorkTypes []string `mapstructure:"work_types" yaml:"work_types"`
}

type AnalysisConfig struct {
	Seed         uint64    `mapstructure:"seed" yaml:"seed"`
	Balance      bool      `mapstructure:"balance" yaml:"balance"`
	WeightMethod string    `mapstructure:"weight_method" yaml:"weight_method"` // inverse|equal|sqrt
	Percentiles  []float64 `mapstructure:"percentiles" yaml:"percentiles"`     // alternative grouping cuts
}

type OutputConfig struct {
	BOM         bool   `mapstructure:"bom" yaml:"bom"`
	ArchivePath string `mapstructure:"archive_path" yaml:"archive_path"` // SQLite run archive (empty = off)
}

type LoggingConfig struct {
	Debug     bool   `mapstructure:"debug" yaml:"debug"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			IdentitiesDir: "data/identities",
			DepartedDir:   "data/all_leave",
			OperationsDir: "data/all_operation",
			WorkTypeDir:   "data/all_work_type",
			OutputDir:     "out",
		},
		Conventions: ConventionsConfig{
			Identities: Convention{Suffix: "_identities.csv"},
			Departed:   Convention{Suffix: "_identities_filtered.csv"},
			Operations: Convention{Suffix: "_operations.csv"},
			WorkType:   Convention{Prefix: "matched_", Suffix: "_identities.csv"},
		},
		Classification: ClassificationConfig{
			SizeThresholds: []float64{15, 30},
			JoinTiming: map[string]string{
				"早": "early",
				"晚": "late",
			},
		},
		Analysis: AnalysisConfig{
			Seed:         42,
			Balance:      true,
			WeightMethod: "inverse",
			Percentiles:  []float64{33, 66},
		},
		Output: OutputConfig{
			BOM: true,
		},
	}
}

// setDefaults registers every key so AutomaticEnv can resolve it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("paths.identities_dir", cfg.Paths.IdentitiesDir)
	v.SetDefault("paths.departed_dir", cfg.Paths.DepartedDir)
	v.SetDefault("paths.operations_dir", cfg.Paths.OperationsDir)
	v.SetDefault("paths.work_type_dir", cfg.Paths.WorkTypeDir)
	v.SetDefault("paths.joining_time_dir", cfg.Paths.JoiningTimeDir)
	v.SetDefault("paths.output_dir", cfg.Paths.OutputDir)

	v.SetDefault("conventions.identities.prefix", cfg.Conventions.Identities.Prefix)
	v.SetDefault("conventions.identities.suffix", cfg.Conventions.Identities.Suffix)
	v.SetDefault("conventions.departed.prefix", cfg.Conventions.Departed.Prefix)
	v.SetDefault("conventions.departed.suffix", cfg.Conventions.Departed.Suffix)
	v.SetDefault("conventions.operations.prefix", cfg.Conventions.Operations.Prefix)
	v.SetDefault("conventions.operations.suffix", cfg.Conventions.Operations.Suffix)
	v.SetDefault("conventions.work_type.prefix", cfg.Conventions.WorkType.Prefix)
	v.SetDefault("conventions.work_type.suffix", cfg.Conventions.WorkType.Suffix)

	v.SetDefault("classification.size_thresholds", cfg.Classification.SizeThresholds)
	v.SetDefault("classification.join_timing", cfg.Classification.JoinTiming)
	v.SetDefault("classification.work_types", cfg.Classification.WorkTypes)

	v.SetDefault("analysis.seed", cfg.Analysis.Seed)
	v.SetDefault("analysis.balance", cfg.Analysis.Balance)
	v.SetDefault("analysis.weight_method", cfg.Analysis.WeightMethod)
	v.SetDefault("analysis.percentiles", cfg.Analysis.Percentiles)

	v.SetDefault("output.bom", cfg.Output.BOM)
	v.SetDefault("output.archive_path", cfg.Output.ArchivePath)

	v.SetDefault("logging.debug", cfg.Logging.Debug)
	v.SetDefault("logging.directory", cfg.Logging.Directory)
}

// Load loads configuration from file, .env files and ATTRITION_* variables
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("ATTRITION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("attrition")
		v.AddConfigPath(".")
		v.AddConfigPath(".attrition")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".attrition"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// YAML renders the effective configuration
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// OutputPath joins name onto the output directory
func (c *Config) OutputPath(name ...string) string {
	return filepath.Join(append([]string{c.Paths.OutputDir}, name...)...)
}
