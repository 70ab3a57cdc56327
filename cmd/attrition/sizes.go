package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var sizesCmd = stageCommand(pipeline.StageSizes,
	"Classify projects by team size",
	`Counts the developers listed in every <project>_identities.csv file and
classifies the project as small, medium or large using
classification.size_thresholds. Writes project_sizes.csv.`)
