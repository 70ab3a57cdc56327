package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ValidationContext specifies what configuration a command requires
type ValidationContext string

const (
	ValidationContextSizes           ValidationContext = "sizes"
	ValidationContextDepartures      ValidationContext = "departures"
	ValidationContextConsolidate     ValidationContext = "consolidate"
	ValidationContextMatchOperations ValidationContext = "match-operations"
	ValidationContextMatchWorkType   ValidationContext = "match-worktype"
	ValidationContextAnalyze         ValidationContext = "analyze"
	ValidationContextJoiningTime     ValidationContext = "joining-time"
	ValidationContextRun             ValidationContext = "run"
)

// Weighting methods accepted by analysis.weight_method
var weightMethods = map[string]bool{"inverse": true, "equal": true, "sqrt": true}

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}

	return sb.String()
}

// Validate validates configuration for the given command context
func (c *Config) Validate(ctx ValidationContext) *ValidationResult {
	result := &ValidationResult{Valid: true}

	c.validateOutput(result)

	switch ctx {
	case ValidationContextSizes:
		c.validateDir(result, "paths.identities_dir", c.Paths.IdentitiesDir, true)
		c.validateConvention(result, "conventions.identities", c.Conventions.Identities)
		c.validateThresholds(result)
	case ValidationContextDepartures:
		c.validateDir(result, "paths.identities_dir", c.Paths.IdentitiesDir, true)
		c.validateDir(result, "paths.departed_dir", c.Paths.DepartedDir, true)
		c.validateConvention(result, "conventions.identities", c.Conventions.Identities)
		c.validateConvention(result, "conventions.departed", c.Conventions.Departed)
	case ValidationContextConsolidate:
	case ValidationContextMatchOperations:
		c.validateDir(result, "paths.identities_dir", c.Paths.IdentitiesDir, true)
		c.validateDir(result, "paths.operations_dir", c.Paths.OperationsDir, true)
		c.validateConvention(result, "conventions.identities", c.Conventions.Identities)
		c.validateConvention(result, "conventions.operations", c.Conventions.Operations)
	case ValidationContextMatchWorkType:
		c.validateDir(result, "paths.departed_dir", c.Paths.DepartedDir, true)
		c.validateDir(result, "paths.work_type_dir", c.Paths.WorkTypeDir, true)
		c.validateConvention(result, "conventions.departed", c.Conventions.Departed)
		c.validateConvention(result, "conventions.work_type", c.Conventions.WorkType)
	case ValidationContextAnalyze:
		c.validateAnalysis(result)
	case ValidationContextJoiningTime:
		c.validateDir(result, "paths.joining_time_dir", c.Paths.JoiningTimeDir, true)
		c.validateJoinTiming(result)
	case ValidationContextRun:
		c.validateDir(result, "paths.identities_dir", c.Paths.IdentitiesDir, true)
		c.validateDir(result, "paths.departed_dir", c.Paths.DepartedDir, true)
		c.validateDir(result, "paths.operations_dir", c.Paths.OperationsDir, false)
		c.validateDir(result, "paths.work_type_dir", c.Paths.WorkTypeDir, false)
		c.validateDir(result, "paths.joining_time_dir", c.Paths.JoiningTimeDir, false)
		c.validateConvention(result, "conventions.identities", c.Conventions.Identities)
		c.validateConvention(result, "conventions.departed", c.Conventions.Departed)
		c.validateThresholds(result)
		c.validateAnalysis(result)
		c.validateJoinTiming(result)
	}

	return result
}

func (c *Config) validateOutput(result *ValidationResult) {
	if c.Paths.OutputDir == "" {
		result.AddError("paths.output_dir is required")
	}
}

// validateDir checks that dir exists. Optional dirs only warn when set but
// missing; the corresponding stage is then skipped.
func (c *Config) validateDir(result *ValidationResult, key, dir string, required bool) {
	if dir == "" {
		if required {
			result.AddError("%s is required", key)
		}
		return
	}

	info, err := os.Stat(dir)
	switch {
	case err != nil && required:
		result.AddError("%s: %v", key, err)
	case err != nil:
		result.AddWarning("%s: %v (stage will be skipped)", key, err)
	case !info.IsDir():
		result.AddError("%s: %s is not a directory", key, dir)
	}
}

func (c *Config) validateConvention(result *ValidationResult, key string, conv Convention) {
	if conv.Suffix == "" {
		result.AddError("%s.suffix is required", key)
	}
}

func (c *Config) validateThresholds(result *ValidationResult) {
	cuts := c.Classification.SizeThresholds
	if len(cuts) != 2 {
		result.AddError("classification.size_thresholds must have exactly 2 cuts (small|medium|large), got %d", len(cuts))
		return
	}
	if !sort.Float64sAreSorted(cuts) || cuts[0] == cuts[1] {
		result.AddError("classification.size_thresholds must be strictly ascending: %v", cuts)
	}
}

func (c *Config) validateAnalysis(result *ValidationResult) {
	if !weightMethods[c.Analysis.WeightMethod] {
		result.AddError("analysis.weight_method must be inverse, equal or sqrt, got %q", c.Analysis.WeightMethod)
	}

	ps := c.Analysis.Percentiles
	if len(ps) != 2 {
		result.AddError("analysis.percentiles must have exactly 2 values, got %d", len(ps))
		return
	}
	for _, p := range ps {
		if p <= 0 || p >= 100 {
			result.AddError("analysis.percentiles must lie in (0, 100): %v", ps)
			return
		}
	}
	if ps[0] >= ps[1] {
		result.AddError("analysis.percentiles must be strictly ascending: %v", ps)
	}
}

func (c *Config) validateJoinTiming(result *ValidationResult) {
	if len(c.Classification.JoinTiming) == 0 {
		result.AddError("classification.join_timing must map at least one label")
		return
	}
	for raw, label := range c.Classification.JoinTiming {
		if label != "early" && label != "late" {
			result.AddError("classification.join_timing[%q] must be early or late, got %q", raw, label)
		}
	}
}
