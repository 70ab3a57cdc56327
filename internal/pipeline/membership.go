package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rohankatakam/attrition/internal/aggregate"
	"github.com/rohankatakam/attrition/internal/errors"
	"github.com/rohankatakam/attrition/internal/match"
	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/scan"
	"github.com/rohankatakam/attrition/internal/table"
)

// Developer-level columns
const (
	ColAuthor       = "Author"
	ColDeveloper    = "Developer"
	ColMainWorkType = "Main Work Type"
)

// Output folders of the membership stages
const (
	DirFiltered = "filtered"
	DirWorkType = "work_type"
)

// filterPair keeps the rows of the pair's right file whose developer column
// is one of the authors of the left file. A file that cannot be read is
// reported and skipped; a missing column aborts the stage.
func (o *Orchestrator) filterPair(p match.Pair, rightCols []string, res *Result) (*table.Table, bool, error) {
	left, err := table.Read(p.Left.Path)
	if err != nil {
		res.warn("%s: %v", p.Left.Name, err)
		res.Report.Skipped++
		return nil, false, nil
	}
	if err := left.Require(p.Left.Name, ColAuthor); err != nil {
		return nil, false, errors.SchemaError(err, "unexpected identities schema")
	}

	right, err := table.Read(p.Right.Path)
	if err != nil {
		res.warn("%s: %v", p.Right.Name, err)
		res.Report.Skipped++
		return nil, false, nil
	}
	if err := right.Require(p.Right.Name, rightCols...); err != nil {
		return nil, false, errors.SchemaError(err, "unexpected developer schema")
	}

	authors, err := aggregate.KeySet(left, ColAuthor)
	if err != nil {
		return nil, false, err
	}
	filtered, err := aggregate.FilterByMembership(right, ColDeveloper, authors)
	if err != nil {
		return nil, false, err
	}

	o.logger.WithField("project", p.Key).Debugf("Kept %d of %d developers", filtered.Len(), right.Len())
	return filtered, true, nil
}

// matchOperations keeps, per project, the operations of developers listed
// in the identities file
func (o *Orchestrator) matchOperations(_ context.Context, res *Result) error {
	cfg := o.config
	ids, err := o.scan(cfg.Paths.IdentitiesDir, scan.Convention(cfg.Conventions.Identities), res)
	if err != nil {
		return err
	}
	ops, err := o.scan(cfg.Paths.OperationsDir, scan.Convention(cfg.Conventions.Operations), res)
	if err != nil {
		return err
	}

	mr := o.match(ids, ops, res)
	for _, p := range mr.Pairs {
		filtered, ok, err := o.filterPair(p, []string{ColDeveloper}, res)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		seen := make(map[string]bool)
		for _, dev := range filtered.Column(ColDeveloper) {
			dev = strings.TrimSpace(dev)
			if seen[dev] {
				continue
			}
			seen[dev] = true
			res.Developers = append(res.Developers, models.DeveloperRecord{Developer: dev, Project: p.Key})
		}

		res.Report.Records += filtered.Len()
		path := cfg.OutputPath(DirFiltered, "filtered_"+p.Right.Name)
		if err := o.write(path, filtered, false, res); err != nil {
			return err
		}
	}
	return nil
}

// matchWorkType keeps, per project, the main work type of every departed
// developer
func (o *Orchestrator) matchWorkType(_ context.Context, res *Result) error {
	cfg := o.config
	departed, err := o.scan(cfg.Paths.DepartedDir, scan.Convention(cfg.Conventions.Departed), res)
	if err != nil {
		return err
	}
	workTypes, err := o.scan(cfg.Paths.WorkTypeDir, scan.Convention(cfg.Conventions.WorkType), res)
	if err != nil {
		return err
	}

	mr := o.match(departed, workTypes, res)
	for _, p := range mr.Pairs {
		filtered, ok, err := o.filterPair(p, []string{ColDeveloper, ColMainWorkType}, res)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		matched, err := filtered.Select(ColDeveloper, ColMainWorkType)
		if err != nil {
			return errors.SchemaError(err, "unexpected developer schema")
		}

		kept := matched.Filter(func(row []string) bool {
			var wt models.WorkType
			if strings.TrimSpace(row[1]) == table.Missing && len(cfg.Classification.WorkTypes) == 0 {
				// an open work type set keeps developers without one
				row[1] = table.Missing
			} else {
				parsed, err := models.ParseWorkType(row[1], cfg.Classification.WorkTypes)
				if err != nil {
					res.warn("%s: developer %s: %v", p.Key, row[0], err)
					return false
				}
				wt = parsed
				row[1] = string(wt)
			}
			res.Developers = append(res.Developers, models.DeveloperRecord{
				Developer: strings.TrimSpace(row[0]),
				Project:   p.Key,
				WorkType:  wt,
				Left:      true,
			})
			return true
		})

		res.Report.Records += kept.Len()
		path := cfg.OutputPath(DirWorkType, fmt.Sprintf("%s_matched_developers.csv", p.Key))
		if err := o.write(path, kept, cfg.Output.BOM, res); err != nil {
			return err
		}
	}
	return nil
}
