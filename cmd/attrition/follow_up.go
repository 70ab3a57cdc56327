package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var followUpCmd = stageCommand(pipeline.StageFollowUp,
	"Descriptive, power and alternative-grouping analysis",
	`Reads balanced_data.csv and reports descriptive statistics, Levene's test,
Cohen's f with the sample size needed for 80% power, large vs non-large
projects and row-count percentile groups. Writes supplementary_analysis.xlsx.`)
