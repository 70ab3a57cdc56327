package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var matchOperationsCmd = stageCommand(pipeline.StageMatchOperations,
	"Keep the operations of each project's identified developers",
	`For every project present in both the identities and the operations
folder, keeps the operations whose Developer is an Author of the identities
file. Writes filtered/filtered_<project>_operations.csv.`)
