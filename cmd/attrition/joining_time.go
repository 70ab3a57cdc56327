package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var joiningTimeCmd = stageCommand(pipeline.StageJoiningTime,
	"Relate joining time to departure",
	`Combines every CSV of paths.joining_time_dir (Author, First Commit, Date
Comparison, leave), maps the joining labels to early/late, and runs a Welch
t-test and a logistic regression of leave on joining time. Writes
combined_analysis.csv.`)
