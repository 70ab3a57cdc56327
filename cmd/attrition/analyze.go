package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var analyzeCmd = stageCommand(pipeline.StageAnalyze,
	"Compare departure rates across project sizes",
	`Reads consolidated.csv, normalizes the size labels, drops incomplete rows
and samples the large projects down to the medium count (analysis.seed).
Runs Mann-Whitney U for two groups or Kruskal-Wallis with eta squared for
three, followed by Dunn's test when significant. Writes balanced_data.csv and
posthoc_results.csv.`)
