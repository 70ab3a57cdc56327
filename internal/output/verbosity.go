package output

import (
	"os"
)

// GetDefaultVerbosity returns appropriate default based on environment
func GetDefaultVerbosity() VerbosityLevel {
	// Batch scripts ask for JSON explicitly
	if os.Getenv("ATTRITION_JSON") == "1" {
		return VerbosityJSON
	}

	// CI/CD context
	if os.Getenv("CI") == "true" {
		return VerbosityQuiet
	}

	return VerbosityStandard
}
