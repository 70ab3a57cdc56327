package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var weightedCmd = stageCommand(pipeline.StageWeighted,
	"Weighted departure statistics per project size",
	`Describes each size class with inverse, equal or square-root group
weights (analysis.weight_method), reports the effective sample size and runs
Kruskal-Wallis. Writes weighted_stats.csv.`)
