package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var consolidateCmd = stageCommand(pipeline.StageConsolidate,
	"Join project sizes and departure percentages",
	`Left-joins leave.csv onto project_sizes.csv by project name and writes
consolidated.csv. Every project size row is kept.`)
