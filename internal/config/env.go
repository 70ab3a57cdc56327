package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads .env files in order of precedence. godotenv never
// overrides variables that are already set, so the first file wins.
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".attrition", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies the short, unprefixed variables used by the
// lab's batch scripts on top of the viper-resolved configuration
func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("IDENTITIES_DIR"); dir != "" {
		cfg.Paths.IdentitiesDir = expandPath(dir)
	}
	if dir := os.Getenv("DEPARTED_DIR"); dir != "" {
		cfg.Paths.DepartedDir = expandPath(dir)
	}
	if dir := os.Getenv("OPERATIONS_DIR"); dir != "" {
		cfg.Paths.OperationsDir = expandPath(dir)
	}
	if dir := os.Getenv("WORK_TYPE_DIR"); dir != "" {
		cfg.Paths.WorkTypeDir = expandPath(dir)
	}
	if dir := os.Getenv("JOINING_TIME_DIR"); dir != "" {
		cfg.Paths.JoiningTimeDir = expandPath(dir)
	}
	if dir := os.Getenv("OUTPUT_DIR"); dir != "" {
		cfg.Paths.OutputDir = expandPath(dir)
	}
	if path := os.Getenv("ARCHIVE_PATH"); path != "" {
		cfg.Output.ArchivePath = expandPath(path)
	}
	if seed := os.Getenv("ANALYSIS_SEED"); seed != "" {
		if n, err := strconv.ParseUint(seed, 10, 64); err == nil {
			cfg.Analysis.Seed = n
		}
	}
	if debug := os.Getenv("ATTRITION_DEBUG"); debug != "" {
		cfg.Logging.Debug = debug == "true" || debug == "1"
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
