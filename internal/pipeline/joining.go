package pipeline

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/rohankatakam/attrition/internal/aggregate"
	"github.com/rohankatakam/attrition/internal/classify"
	"github.com/rohankatakam/attrition/internal/errors"
	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/output"
	"github.com/rohankatakam/attrition/internal/scan"
	"github.com/rohankatakam/attrition/internal/stats"
	"github.com/rohankatakam/attrition/internal/table"
)

// Joining-time columns, assigned positionally
const (
	ColFirstCommit    = "First Commit"
	ColDateComparison = "Date Comparison"
	ColLeave          = "leave"
	ColDateStd        = "Date Comparison_std"
)

// FileCombined is the joining-time output
const FileCombined = "combined_analysis.csv"

var joiningColumns = []string{ColAuthor, ColFirstCommit, ColDateComparison, ColLeave}

// joiningTime relates the joining time of developers (early/late) to
// whether they left the project
func (o *Orchestrator) joiningTime(_ context.Context, res *Result) error {
	cfg := o.config
	mapping, err := classify.JoinTimingMapping(cfg.Classification.JoinTiming)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityCritical, "invalid join timing mapping")
	}

	sr, err := scan.ScanAll(cfg.Paths.JoiningTimeDir, ".csv")
	if err != nil {
		return errors.FileSystemError(err, "failed to scan input folder").WithContext("dir", cfg.Paths.JoiningTimeDir)
	}
	o.reportSkipped(sr, res)

	var parts []*table.Table
	for _, e := range sr.Entries {
		t, err := table.Read(e.Path)
		if err == nil {
			err = t.SetColumns(joiningColumns...)
		}
		if err != nil {
			res.warn("%s: %v", e.Name, err)
			res.Report.Skipped++
			continue
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return errors.New(errors.ErrorTypeData, errors.SeverityCritical, "no usable joining-time files").
			WithContext("dir", cfg.Paths.JoiningTimeDir)
	}

	combined, err := aggregate.Concat(parts...)
	if err != nil {
		return errors.SchemaError(err, "failed to combine joining-time files")
	}
	total := combined.Len()
	combined = combined.DropMissing()

	// Map labels to codes; rows with unknown labels are dropped
	combined = combined.Filter(func(row []string) bool {
		jt, err := mapping.Classify(row[2])
		if err != nil {
			res.warn("%s: %v", row[0], err)
			return false
		}
		left, err := models.ParseLeft(row[3])
		if err != nil {
			res.warn("%s: %v", row[0], err)
			return false
		}
		row[2] = table.FormatFloat(jt.Code())
		row[3] = "0"
		if left {
			row[3] = "1"
		}
		return true
	})
	res.Report.Skipped += total - combined.Len()
	res.Report.Records = combined.Len()

	x, err := combined.Floats(ColDateComparison)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityCritical, "joining time codes")
	}
	y, err := combined.Floats(ColLeave)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityCritical, "leave flags")
	}

	std := stats.Standardize(x)
	cells := make([]string, len(std))
	for i, v := range std {
		cells[i] = table.FormatFloat(v)
	}
	if err := combined.SetColumn(ColDateStd, cells); err != nil {
		return err
	}

	var stay, leave []float64
	for i, v := range x {
		if y[i] == 1 {
			leave = append(leave, v)
		} else {
			stay = append(stay, v)
		}
	}
	res.Report.GroupCounts = []output.GroupCount{{Group: "stay", N: len(stay)}, {Group: "leave", N: len(leave)}}

	row := &output.JoinTimingRow{
		N:         len(x),
		StayMean:  output.Float(mean(stay)),
		LeaveMean: output.Float(mean(leave)),
	}
	if tt, err := stats.WelchTTest(stay, leave); err != nil {
		res.warn("no t-test: %v", err)
	} else {
		row.TTest = res.test(tt)
	}

	if model, err := stats.FitLogistic(x, y); err != nil {
		res.warn("no logistic regression: %v", err)
	} else {
		row.Intercept = output.Float(model.Intercept)
		row.Coef = output.Float(model.Coef)
		row.OddsRatio = output.Float(model.OddsRatio())
		row.ProbEarly = output.Float(model.Predict(models.JoinEarly.Code()))
		row.ProbLate = output.Float(model.Predict(models.JoinLate.Code()))
	}
	res.Report.JoinTiming = row

	return o.write(cfg.OutputPath(FileCombined), combined, false, res)
}

// mean is NaN for an empty sample
func mean(v []float64) float64 {
	return stat.Mean(v, nil)
}
