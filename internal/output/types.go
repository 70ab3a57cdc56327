package output

import (
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 that renders NaN and infinities as JSON null
// (a single-observation group has no standard deviation)
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// String renders the value for tables and CSV cells; NaN is empty
func (f Float) String() string {
	v := float64(f)
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Report is the structured result of one stage
type Report struct {
	Stage    string   `json:"stage"`
	RunID    string   `json:"run_id,omitempty"`
	Records  int      `json:"records"`
	Skipped  int      `json:"skipped"`
	Outputs  []string `json:"outputs,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	GroupCounts []GroupCount   `json:"group_counts,omitempty"`
	Test        *TestSummary   `json:"test,omitempty"`
	EtaSquared  *Float         `json:"eta_squared,omitempty"`
	PostHoc     []PairwiseRow  `json:"posthoc,omitempty"`
	Describe    []GroupStats   `json:"describe,omitempty"`
	Weighted    []WeightedRow  `json:"weighted,omitempty"`
	Levene      *TestSummary   `json:"levene,omitempty"`
	Power       *PowerSummary  `json:"power,omitempty"`
	Alternative *TestSummary   `json:"alternative_grouping,omitempty"`
	Percentile  *TestSummary   `json:"percentile_grouping,omitempty"`
	JoinTiming  *JoinTimingRow `json:"join_timing,omitempty"`
}

// GroupCount is the size of one group
type GroupCount struct {
	Group string `json:"group"`
	N     int    `json:"n"`
}

// TestSummary is a hypothesis test outcome
type TestSummary struct {
	Name        string `json:"name"`
	Statistic   Float  `json:"statistic"`
	PValue      Float  `json:"p_value"`
	DF          Float  `json:"df,omitempty"`
	Significant bool   `json:"significant"`
	Detail      string `json:"detail,omitempty"`
}

// PairwiseRow is one post-hoc comparison
type PairwiseRow struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Z         Float  `json:"z"`
	PValue    Float  `json:"p_value"`
	PAdjusted Float  `json:"p_adjusted"`
}

// GroupStats is one describe() row
type GroupStats struct {
	Group  string `json:"group"`
	Count  int    `json:"count"`
	Mean   Float  `json:"mean"`
	Std    Float  `json:"std"`
	Min    Float  `json:"min"`
	Q1     Float  `json:"q1"`
	Median Float  `json:"median"`
	Q3     Float  `json:"q3"`
	Max    Float  `json:"max"`
}

// WeightedRow is one weighted group description
type WeightedRow struct {
	Group      string `json:"group"`
	Mean       Float  `json:"weighted_mean"`
	Std        Float  `json:"weighted_std"`
	N          int    `json:"n"`
	EffectiveN Float  `json:"effective_n"`
}

// PowerSummary is the ANOVA power analysis
type PowerSummary struct {
	Alpha      Float `json:"alpha"`
	Power      Float `json:"power"`
	EffectSize Float `json:"cohens_f"`
	Groups     int   `json:"groups"`
	// RequiredN is the total sample size, rounded up. Nil when the target
	// power cannot be reached at this effect size.
	RequiredN *int `json:"required_n"`
	// RequiredPerGroup spreads RequiredN evenly over the groups
	RequiredPerGroup *int `json:"required_per_group"`
}

// JoinTimingRow is the joining-time analysis
type JoinTimingRow struct {
	N         int          `json:"n"`
	StayMean  Float        `json:"stay_mean"`
	LeaveMean Float        `json:"leave_mean"`
	TTest     *TestSummary `json:"t_test,omitempty"`
	Intercept Float        `json:"intercept"`
	Coef      Float        `json:"coef"`
	OddsRatio Float        `json:"odds_ratio"`
	ProbEarly Float        `json:"p_leave_early"`
	ProbLate  Float        `json:"p_leave_late"`
}
