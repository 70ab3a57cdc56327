package pipeline

import (
	"context"
	"strconv"
	"strings"

	"github.com/rohankatakam/attrition/internal/aggregate"
	"github.com/rohankatakam/attrition/internal/classify"
	"github.com/rohankatakam/attrition/internal/errors"
	"github.com/rohankatakam/attrition/internal/extract"
	"github.com/rohankatakam/attrition/internal/match"
	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/output"
	"github.com/rohankatakam/attrition/internal/scan"
	"github.com/rohankatakam/attrition/internal/table"
)

// Column names of the project-level tables
const (
	ColProject   = "项目名称"
	ColSize      = "项目规模"
	ColRows      = "项目行数"
	ColDeparture = "离开百分比"
)

// Output file names
const (
	FileProjectSizes = "project_sizes.csv"
	FileLeave        = "leave.csv"
	FileConsolidated = "consolidated.csv"
)

func (o *Orchestrator) scan(dir string, conv scan.Convention, res *Result) (*scan.Result, error) {
	sr, err := scan.Scan(dir, conv)
	if err != nil {
		return nil, errors.FileSystemError(err, "failed to scan input folder").WithContext("dir", dir)
	}
	o.reportSkipped(sr, res)
	return sr, nil
}

func (o *Orchestrator) reportSkipped(sr *scan.Result, res *Result) {
	for _, s := range sr.Skipped {
		res.warn("%s: skipped: %v", s.Name, s.Err)
	}
	res.Report.Skipped += len(sr.Skipped)
}

func (o *Orchestrator) match(left, right *scan.Result, res *Result) *match.Result {
	mr := match.Match(left.Entries, right.Entries)
	for _, k := range mr.UnmatchedLeft {
		res.warn("%s: no counterpart in %s", k, right.Dir)
	}
	for _, k := range mr.UnmatchedRight {
		res.warn("%s: no counterpart in %s", k, left.Dir)
	}
	for _, d := range mr.Duplicates {
		res.warn("%s: duplicate key, kept %s, ignored %s", d.Key, d.Kept, d.Dropped)
	}
	return mr
}

func (o *Orchestrator) recordErrors(problems []extract.RecordError, res *Result) {
	for _, p := range problems {
		res.warn("%v", p)
		// Low severity problems keep the record with a marker
		if errors.GetSeverity(p.Err) != errors.SeverityLow {
			res.Report.Skipped++
		}
	}
}

func (o *Orchestrator) write(path string, t *table.Table, bom bool, res *Result) error {
	if err := table.Write(path, t, bom); err != nil {
		return errors.FileSystemError(err, "failed to write output").WithContext("file", path)
	}
	res.wrote(path)
	return nil
}

// sizes counts the rows of every identities file and classifies the
// project by size
func (o *Orchestrator) sizes(_ context.Context, res *Result) error {
	cfg := o.config
	classifier, err := classify.SizeThresholds(cfg.Classification.SizeThresholds)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityCritical, "invalid size thresholds")
	}

	sr, err := o.scan(cfg.Paths.IdentitiesDir, scan.Convention(cfg.Conventions.Identities), res)
	if err != nil {
		return err
	}

	records, problems := extract.ProjectSizes(sr.Entries, classifier)
	o.recordErrors(problems, res)

	t := table.New(ColProject, ColSize, ColRows)
	counts := make(map[models.SizeClass]int)
	for _, r := range records {
		t.Append(string(r.Key), r.Size.Chinese(), strconv.Itoa(r.RowCount))
		counts[r.Size]++
	}
	for _, c := range models.SizeClasses {
		res.Report.GroupCounts = append(res.Report.GroupCounts, output.GroupCount{Group: c.String(), N: counts[c]})
	}

	res.Projects = records
	res.Report.Records = len(records)
	return o.write(cfg.OutputPath(FileProjectSizes), t, false, res)
}

// departures computes the share of departed developers of every project
// present in both the identities and the departed folder
func (o *Orchestrator) departures(_ context.Context, res *Result) error {
	cfg := o.config
	ids, err := o.scan(cfg.Paths.IdentitiesDir, scan.Convention(cfg.Conventions.Identities), res)
	if err != nil {
		return err
	}
	departed, err := o.scan(cfg.Paths.DepartedDir, scan.Convention(cfg.Conventions.Departed), res)
	if err != nil {
		return err
	}

	mr := o.match(ids, departed, res)
	records, problems := extract.Departures(mr.Pairs)
	o.recordErrors(problems, res)

	t := table.New(ColProject, ColDeparture)
	for _, r := range records {
		t.Append(string(r.Key), r.Departure.String())
	}

	res.Projects = records
	res.Report.Records = len(records)
	return o.write(cfg.OutputPath(FileLeave), t, false, res)
}

// consolidate left-joins the departure percentages onto the project sizes
func (o *Orchestrator) consolidate(_ context.Context, res *Result) error {
	cfg := o.config
	sizes, err := o.readRequired(cfg.OutputPath(FileProjectSizes), ColProject, ColSize, ColRows)
	if err != nil {
		return err
	}
	leave, err := o.readRequired(cfg.OutputPath(FileLeave), ColProject, ColDeparture)
	if err != nil {
		return err
	}

	merged, err := aggregate.LeftJoin(sizes, leave, ColProject, ColDeparture)
	if err != nil {
		return errors.SchemaError(err, "failed to join project tables")
	}

	records := make([]models.ProjectRecord, 0, merged.Len())
	for i := 0; i < merged.Len(); i++ {
		r, err := projectRecord(merged, i)
		if err != nil {
			res.warn("%s: %v", merged.Value(i, ColProject), err)
			continue
		}
		if !r.Departure.Defined {
			res.warn("%s: no departure percentage", r.Key)
		}
		records = append(records, r)
	}

	res.Projects = records
	res.Report.Records = merged.Len()
	return o.write(cfg.OutputPath(FileConsolidated), merged, cfg.Output.BOM, res)
}

// readRequired reads a CSV and checks its schema. A missing file or column
// aborts the stage.
func (o *Orchestrator) readRequired(path string, cols ...string) (*table.Table, error) {
	t, err := table.Read(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFileSystem, errors.SeverityCritical, "failed to read input").
			WithContext("file", path)
	}
	if err := t.Require(path, cols...); err != nil {
		return nil, errors.SchemaError(err, "unexpected table schema")
	}
	return t, nil
}

// projectRecord parses one consolidated row
func projectRecord(t *table.Table, row int) (models.ProjectRecord, error) {
	cell := func(col string) string { return strings.TrimSpace(t.Value(row, col)) }
	r := models.ProjectRecord{Key: models.MatchKey(cell(ColProject))}

	if v := cell(ColRows); v != table.Missing {
		n, err := strconv.Atoi(aggregate.NormalizeKey(v))
		if err != nil {
			return r, err
		}
		r.RowCount = n
	}
	if v := cell(ColSize); v != table.Missing {
		c, err := models.ParseSizeClass(v)
		if err != nil {
			return r, err
		}
		r.Size = c
	}
	if v := cell(ColDeparture); v != table.Missing {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return r, err
		}
		r.Departure = models.DefinedPercentage(p)
	}
	return r, nil
}
