package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rohankatakam/attrition/internal/classify"
	"github.com/rohankatakam/attrition/internal/errors"
	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/output"
	"github.com/rohankatakam/attrition/internal/stats"
	"github.com/rohankatakam/attrition/internal/table"
)

// Columns added by the follow-up alternative groupings
const (
	ColLargeVsRest = "规模分组2"
	ColPercentile  = "规模分组3"
	LabelNotLarge  = "非大项目"
)

// Output file names
const (
	FileBalanced     = "balanced_data.csv"
	FilePostHoc      = "posthoc_results.csv"
	FileWeighted     = "weighted_stats.csv"
	FileSupplemental = "supplementary_analysis.xlsx"
)

// sizeSample is a cleaned size/departure table with its parsed columns
type sizeSample struct {
	table      *table.Table
	sizes      []models.SizeClass
	departures []float64
}

// loadSizeSample reads a project table, normalizes every legacy size label
// to its short Chinese form and drops rows without a size or percentage
func (o *Orchestrator) loadSizeSample(path string, res *Result) (*sizeSample, error) {
	t, err := o.readRequired(path, ColSize, ColDeparture)
	if err != nil {
		return nil, err
	}

	if err := t.Map(ColSize, func(v string) string {
		if strings.TrimSpace(v) == table.Missing {
			return table.Missing
		}
		c, err := models.ParseSizeClass(v)
		if err != nil {
			res.warn("%v", err)
			return table.Missing
		}
		return c.Chinese()
	}); err != nil {
		return nil, err
	}

	before := t.Len()
	t = t.DropMissing(ColSize, ColDeparture)
	if dropped := before - t.Len(); dropped > 0 {
		res.warn("%d rows without size or departure percentage dropped", dropped)
		res.Report.Skipped += dropped
	}

	departures, err := t.Floats(ColDeparture)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSchema, errors.SeverityCritical, "non-numeric departure percentage").
			WithContext("file", path)
	}

	s := &sizeSample{table: t, departures: departures}
	for _, v := range t.Column(ColSize) {
		c, _ := models.ParseSizeClass(v)
		s.sizes = append(s.sizes, c)
	}
	return s, nil
}

// groups splits the departures by size class in the given class order
func (s *sizeSample) groups(order []models.SizeClass) []stats.Group {
	out := make([]stats.Group, len(order))
	for i, c := range order {
		out[i].Name = c.Chinese()
		for r, size := range s.sizes {
			if size == c {
				out[i].Values = append(out[i].Values, s.departures[r])
			}
		}
	}
	return out
}

// rowsOf returns the row indices of class c in table order
func (s *sizeSample) rowsOf(c models.SizeClass) []int {
	var rows []int
	for r, size := range s.sizes {
		if size == c {
			rows = append(rows, r)
		}
	}
	return rows
}

// balance samples the large projects down to the number of medium
// projects. The balanced table lists large, medium then small projects.
func (o *Orchestrator) balance(s *sizeSample) *sizeSample {
	large := s.rowsOf(models.SizeLarge)
	medium := s.rowsOf(models.SizeMedium)
	small := s.rowsOf(models.SizeSmall)

	var picked []int
	if len(medium) > 0 {
		rng := stats.NewRand(o.config.Analysis.Seed)
		for _, i := range stats.Sample(rng, len(large), len(medium)) {
			picked = append(picked, large[i])
		}
	}

	rows := append(append(picked, medium...), small...)
	out := &sizeSample{table: table.New(s.table.Columns...)}
	for _, r := range rows {
		out.table.Rows = append(out.table.Rows, append([]string(nil), s.table.Rows[r]...))
		out.sizes = append(out.sizes, s.sizes[r])
		out.departures = append(out.departures, s.departures[r])
	}
	return out
}

// analyze compares the departure percentage across project sizes on the
// balanced sample
func (o *Orchestrator) analyze(_ context.Context, res *Result) error {
	cfg := o.config
	sample, err := o.loadSizeSample(cfg.OutputPath(FileConsolidated), res)
	if err != nil {
		return err
	}

	if cfg.Analysis.Balance {
		before := sample.table.Len()
		sample = o.balance(sample)
		o.logger.WithField("seed", cfg.Analysis.Seed).Infof("Balanced sample: %d of %d projects", sample.table.Len(), before)
	}

	groups := sample.groups(models.SizeClasses)
	res.Report.GroupCounts = output.Counts(groups)
	res.Report.Records = sample.table.Len()

	if err := o.write(cfg.OutputPath(FileBalanced), sample.table, cfg.Output.BOM, res); err != nil {
		return err
	}

	c, err := stats.CompareGroups(groups)
	if err != nil {
		if stderrors.Is(err, stats.ErrTooFewGroups) || stderrors.Is(err, stats.ErrConstant) {
			res.warn("no group comparison: %v", err)
			return nil
		}
		return errors.Wrap(err, errors.ErrorTypeData, errors.SeverityCritical, "group comparison failed")
	}
	res.Report.FromComparison(c)
	res.Tests = append(res.Tests, c.Test)

	if len(c.PostHoc) == 0 {
		return nil
	}
	matrix := stats.PairwiseMatrix(c.Groups, c.PostHoc)
	t := table.New(append([]string{ColSize}, c.Groups...)...)
	for i, name := range c.Groups {
		cells := []string{name}
		for _, p := range matrix[i] {
			cells = append(cells, output.Float(p).String())
		}
		t.Append(cells...)
	}
	return o.write(cfg.OutputPath(FilePostHoc), t, cfg.Output.BOM, res)
}

// weighted describes each size class with group-balancing weights and
// tests the unweighted distributions with Kruskal-Wallis
func (o *Orchestrator) weighted(_ context.Context, res *Result) error {
	cfg := o.config
	method, err := stats.ParseWeightMethod(cfg.Analysis.WeightMethod)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityCritical, "invalid weight method")
	}

	sample, err := o.loadSizeSample(cfg.OutputPath(FileConsolidated), res)
	if err != nil {
		return err
	}
	groups := sample.groups(models.SizeClasses)
	res.Report.GroupCounts = output.Counts(groups)
	res.Report.Records = sample.table.Len()

	summaries, err := stats.WeightedStats(groups, method)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, errors.SeverityCritical, "weighted statistics failed")
	}
	res.Report.Weighted = output.FromWeighted(summaries)

	t := table.New(ColSize, "加权均值", "加权标准差", "原始样本量", "等效样本量")
	for _, s := range summaries {
		label := s.Group
		if c, err := models.ParseSizeClass(s.Group); err == nil {
			label = c.String()
		}
		t.Append(label,
			output.Float(s.Mean).String(),
			output.Float(s.Std).String(),
			output.Float(float64(s.N)).String(),
			output.Float(s.EffectiveN).String())
	}
	if err := o.write(cfg.OutputPath(FileWeighted), t, false, res); err != nil {
		return err
	}

	kw, err := stats.KruskalWallis(groups)
	if err != nil {
		res.warn("no Kruskal-Wallis test: %v", err)
		return nil
	}
	res.Report.Test = res.test(kw)
	return nil
}

// followUp re-examines the balanced sample: descriptive statistics,
// homogeneity of variance, power analysis and alternative groupings
func (o *Orchestrator) followUp(_ context.Context, res *Result) error {
	cfg := o.config
	sample, err := o.loadSizeSample(cfg.OutputPath(FileBalanced), res)
	if err != nil {
		return err
	}

	// Large first, as in the published tables
	order := []models.SizeClass{models.SizeLarge, models.SizeMedium, models.SizeSmall}
	groups := sample.groups(order)
	res.Report.GroupCounts = output.Counts(groups)
	res.Report.Records = sample.table.Len()
	res.Report.Describe = output.FromSummaries(stats.GroupDescribe(groups))

	if lev, err := stats.Levene(groups); err != nil {
		res.warn("no Levene test: %v", err)
	} else {
		res.Report.Levene = res.test(lev)
	}

	if f, err := stats.CohensF(groups); err != nil {
		res.warn("no effect size: %v", err)
	} else if n, err := stats.RequiredN(f, len(order), stats.Alpha, stats.TargetPower); err != nil {
		res.warn("no power analysis: %v", err)
		res.Report.Power = output.UnsolvedPowerSummary(f, len(order))
	} else {
		res.Report.Power = output.NewPowerSummary(f, n, len(order))
	}

	grouping, err := o.largeVsRest(sample, res)
	if err != nil {
		return err
	}
	if err := o.percentileGrouping(sample, res); err != nil {
		return err
	}

	return o.writeWorkbook(cfg.OutputPath(FileSupplemental), output.Workbook{
		Describe: res.Report.Describe,
		Power:    res.Report.Power,
		Grouping: grouping,
	}, res)
}

// largeVsRest merges small and medium projects and compares them with the
// large ones
func (o *Orchestrator) largeVsRest(s *sizeSample, res *Result) (*table.Table, error) {
	merged := make([]string, len(s.sizes))
	var large, rest []float64
	for r, c := range s.sizes {
		if c == models.SizeLarge {
			merged[r] = c.Chinese()
			large = append(large, s.departures[r])
		} else {
			merged[r] = LabelNotLarge
			rest = append(rest, s.departures[r])
		}
	}
	if err := s.table.SetColumn(ColLargeVsRest, merged); err != nil {
		return nil, err
	}

	if mwu, err := stats.MannWhitneyU(large, rest); err != nil {
		res.warn("no large vs non-large comparison: %v", err)
	} else {
		res.Report.Alternative = res.test(mwu)
		res.Report.Alternative.Detail = fmt.Sprintf("%s (n=%d) vs %s (n=%d)",
			models.SizeLarge.Chinese(), len(large), LabelNotLarge, len(rest))
	}

	return s.table.Select(ColSize, ColLargeVsRest, ColDeparture)
}

// percentileGrouping regroups the projects by row-count tertiles when the
// row counts are available. Projects with no rows stay ungrouped.
func (o *Orchestrator) percentileGrouping(s *sizeSample, res *Result) error {
	if !s.table.Has(ColRows) {
		return nil
	}

	counts := make([]float64, 0, s.table.Len())
	for r := 0; r < s.table.Len(); r++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(s.table.Value(r, ColRows)), 64)
		if err != nil {
			v = -1
		}
		counts = append(counts, v)
	}

	var known []float64
	for _, v := range counts {
		if v >= 0 {
			known = append(known, v)
		}
	}
	labels := []string{models.SizeSmall.Chinese(), models.SizeMedium.Chinese(), models.SizeLarge.Chinese()}
	th, err := classify.PercentileThresholds(known, o.config.Analysis.Percentiles, labels)
	if err != nil {
		res.warn("no percentile grouping: %v", err)
		return nil
	}

	assigned := make([]string, len(counts))
	byLabel := make(map[string][]float64)
	for r, v := range counts {
		if v <= 0 {
			continue
		}
		label, err := th.Classify(v)
		if err != nil {
			continue
		}
		assigned[r] = label
		byLabel[label] = append(byLabel[label], s.departures[r])
	}
	if err := s.table.SetColumn(ColPercentile, assigned); err != nil {
		return err
	}

	groups := make([]stats.Group, len(labels))
	for i, l := range labels {
		groups[i] = stats.Group{Name: l, Values: byLabel[l]}
	}
	c, err := stats.CompareGroups(groups)
	if err != nil {
		res.warn("no percentile grouping comparison: %v", err)
		return nil
	}
	res.Report.Percentile = res.test(c.Test)
	res.Report.Percentile.Detail = fmt.Sprintf("%s cuts %v", ColRows, th.Cuts)
	return nil
}

func (o *Orchestrator) writeWorkbook(path string, wb output.Workbook, res *Result) error {
	if err := output.WriteWorkbook(path, wb); err != nil {
		return errors.FileSystemError(err, "failed to write workbook").WithContext("file", path)
	}
	res.wrote(path)
	return nil
}
