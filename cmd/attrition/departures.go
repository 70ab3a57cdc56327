package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var departuresCmd = stageCommand(pipeline.StageDepartures,
	"Compute the share of departed developers per project",
	`Matches every identities file with its departed-developers file by
project key and writes the departure percentage (two decimals) to leave.csv.
Projects with no identities get an empty percentage and a warning.`)
