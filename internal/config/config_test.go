package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []float64{15, 30}, cfg.Classification.SizeThresholds)
	assert.Equal(t, "_identities.csv", cfg.Conventions.Identities.Suffix)
	assert.Equal(t, "matched_", cfg.Conventions.WorkType.Prefix)
	assert.Equal(t, "early", cfg.Classification.JoinTiming["早"])
	assert.Equal(t, uint64(42), cfg.Analysis.Seed)
	assert.True(t, cfg.Output.BOM)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "attrition.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  identities_dir: /data/ids
  output_dir: /data/out
classification:
  size_thresholds: [10, 50]
analysis:
  weight_method: sqrt
`), 0644))

	t.Setenv("ATTRITION_PATHS_DEPARTED_DIR", "/data/leave")
	t.Setenv("OUTPUT_DIR", "/override/out")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/ids", cfg.Paths.IdentitiesDir)
	assert.Equal(t, "/data/leave", cfg.Paths.DepartedDir)
	assert.Equal(t, "/override/out", cfg.Paths.OutputDir)
	assert.Equal(t, []float64{10, 50}, cfg.Classification.SizeThresholds)
	assert.Equal(t, "sqrt", cfg.Analysis.WeightMethod)
	// untouched keys keep their defaults
	assert.Equal(t, "_operations.csv", cfg.Conventions.Operations.Suffix)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := Default()
	cfg.Paths.OutputDir = "results"
	cfg.Classification.WorkTypes = []string{"coding", "review"}

	path := filepath.Join(dir, "nested", "attrition.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "results", loaded.Paths.OutputDir)
	assert.Equal(t, []string{"coding", "review"}, loaded.Classification.WorkTypes)
}

func TestValidate_Sizes(t *testing.T) {
	cfg := Default()
	cfg.Paths.IdentitiesDir = t.TempDir()

	result := cfg.Validate(ValidationContextSizes)
	assert.False(t, result.HasErrors(), result.Error())

	cfg.Classification.SizeThresholds = []float64{30, 15}
	result = cfg.Validate(ValidationContextSizes)
	assert.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "strictly ascending")
}

func TestValidate_MissingDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.IdentitiesDir = filepath.Join(t.TempDir(), "nope")
	cfg.Paths.DepartedDir = t.TempDir()

	result := cfg.Validate(ValidationContextDepartures)
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Errors[0], "paths.identities_dir")
}

func TestValidate_RunOptionalDirsWarn(t *testing.T) {
	cfg := Default()
	cfg.Paths.IdentitiesDir = t.TempDir()
	cfg.Paths.DepartedDir = t.TempDir()
	cfg.Paths.OperationsDir = filepath.Join(t.TempDir(), "missing")
	cfg.Paths.WorkTypeDir = ""

	result := cfg.Validate(ValidationContextRun)
	assert.False(t, result.HasErrors(), result.Error())
	assert.Len(t, result.Warnings, 1)
}

func TestValidate_Analysis(t *testing.T) {
	cfg := Default()
	cfg.Analysis.WeightMethod = "harmonic"
	cfg.Analysis.Percentiles = []float64{66, 33}

	result := cfg.Validate(ValidationContextAnalyze)
	assert.Len(t, result.Errors, 2)
}

func TestValidate_JoinTiming(t *testing.T) {
	cfg := Default()
	cfg.Paths.JoiningTimeDir = t.TempDir()
	cfg.Classification.JoinTiming = map[string]string{"早": "soon"}

	result := cfg.Validate(ValidationContextJoiningTime)
	require.True(t, result.HasErrors())
	assert.Contains(t, result.Error(), "must be early or late")
}
