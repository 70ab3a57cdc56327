package output

import (
	"math"

	"github.com/rohankatakam/attrition/internal/stats"
)

// FromTest converts a stats test result
func FromTest(r stats.TestResult) *TestSummary {
	return &TestSummary{
		Name:        r.Name,
		Statistic:   Float(r.Statistic),
		PValue:      Float(r.PValue),
		DF:          Float(r.DF),
		Significant: r.Significant(),
	}
}

// FromComparison fills the omnibus fields of a report
func (r *Report) FromComparison(c *stats.Comparison) {
	r.Test = FromTest(c.Test)
	if c.HasEffectSize() {
		eta := Float(c.EtaSquared)
		r.EtaSquared = &eta
	}
	r.PostHoc = FromPairwise(c.PostHoc)
}

// FromPairwise converts post-hoc results
func FromPairwise(results []stats.PairwiseResult) []PairwiseRow {
	rows := make([]PairwiseRow, len(results))
	for i, p := range results {
		rows[i] = PairwiseRow{
			A:         p.A,
			B:         p.B,
			Z:         Float(p.Z),
			PValue:    Float(p.PValue),
			PAdjusted: Float(p.PAdjusted),
		}
	}
	return rows
}

// FromSummaries converts describe() rows
func FromSummaries(summaries []stats.GroupSummary) []GroupStats {
	rows := make([]GroupStats, len(summaries))
	for i, s := range summaries {
		rows[i] = GroupStats{
			Group:  s.Group,
			Count:  s.Count,
			Mean:   Float(s.Mean),
			Std:    Float(s.Std),
			Min:    Float(s.Min),
			Q1:     Float(s.Q1),
			Median: Float(s.Median),
			Q3:     Float(s.Q3),
			Max:    Float(s.Max),
		}
	}
	return rows
}

// FromWeighted converts weighted group descriptions
func FromWeighted(summaries []stats.WeightedSummary) []WeightedRow {
	rows := make([]WeightedRow, len(summaries))
	for i, s := range summaries {
		rows[i] = WeightedRow{
			Group:      s.Group,
			Mean:       Float(s.Mean),
			Std:        Float(s.Std),
			N:          s.N,
			EffectiveN: Float(s.EffectiveN),
		}
	}
	return rows
}

// NewPowerSummary rounds the solved sample size up
func NewPowerSummary(effect, requiredN float64, groups int) *PowerSummary {
	total := int(math.Ceil(requiredN))
	perGroup := int(math.Ceil(requiredN / float64(groups)))
	p := UnsolvedPowerSummary(effect, groups)
	p.RequiredN = &total
	p.RequiredPerGroup = &perGroup
	return p
}

// UnsolvedPowerSummary records an effect size for which no sample size
// reaches the target power
func UnsolvedPowerSummary(effect float64, groups int) *PowerSummary {
	return &PowerSummary{
		Alpha:      stats.Alpha,
		Power:      stats.TargetPower,
		EffectSize: Float(effect),
		Groups:     groups,
	}
}

// Counts lists group sizes
func Counts(groups []stats.Group) []GroupCount {
	out := make([]GroupCount, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupCount{Group: g.Name, N: len(g.Values)})
	}
	return out
}
