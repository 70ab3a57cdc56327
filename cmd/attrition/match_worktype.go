package main

import "github.com/rohankatakam/attrition/internal/pipeline"

var matchWorkTypeCmd = stageCommand(pipeline.StageMatchWorkType,
	"Look up the main work type of departed developers",
	`For every project present in both the departed and the work-type folder,
keeps the Developer and Main Work Type of each departed developer. Writes
work_type/<project>_matched_developers.csv.`)
