package output

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// StandardFormatter outputs tests, groups and written files (default)
type StandardFormatter struct{}

func (f *StandardFormatter) Format(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "📊 %s\n", report.Stage)
	if report.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", report.RunID)
	}
	fmt.Fprintf(w, "Records: %d", report.Records)
	if report.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", report.Skipped)
	}
	fmt.Fprintln(w)

	if len(report.GroupCounts) > 0 {
		fmt.Fprintln(w, "\nGroups:")
		for _, g := range report.GroupCounts {
			fmt.Fprintf(w, "  %-12s n=%d\n", g.Group, g.N)
		}
	}

	if report.Test != nil {
		fmt.Fprintln(w)
		writeTest(w, report.Test)
		if report.EtaSquared != nil {
			fmt.Fprintf(w, "  η² = %.3f\n", float64(*report.EtaSquared))
		}
	}

	if len(report.PostHoc) > 0 {
		fmt.Fprintln(w, "\nDunn post-hoc (FDR-BH adjusted):")
		for _, p := range report.PostHoc {
			fmt.Fprintf(w, "  %s vs %s: z=%.3f p=%.4f p_adj=%.4f\n",
				p.A, p.B, float64(p.Z), float64(p.PValue), float64(p.PAdjusted))
		}
	}

	if len(report.Describe) > 0 {
		fmt.Fprintln(w, "\nDescriptive statistics:")
		fmt.Fprintf(w, "  %-12s %6s %9s %9s %9s %9s %9s %9s %9s\n",
			"group", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
		fmt.Fprintln(w, "  "+strings.Repeat("─", 92))
		for _, d := range report.Describe {
			fmt.Fprintf(w, "  %-12s %6d %9s %9s %9s %9s %9s %9s %9s\n",
				d.Group, d.Count, num(d.Mean), num(d.Std), num(d.Min), num(d.Q1), num(d.Median), num(d.Q3), num(d.Max))
		}
	}

	if len(report.Weighted) > 0 {
		fmt.Fprintln(w, "\nWeighted statistics:")
		for _, r := range report.Weighted {
			fmt.Fprintf(w, "  %-12s mean=%s std=%s n=%d effective_n=%s\n",
				r.Group, num(r.Mean), num(r.Std), r.N, num(r.EffectiveN))
		}
	}

	if report.Levene != nil {
		fmt.Fprintln(w)
		writeTest(w, report.Levene)
	}

	if p := report.Power; p != nil {
		fmt.Fprintln(w, "\nPower analysis:")
		fmt.Fprintf(w, "  Cohen's f = %.3f\n", float64(p.EffectSize))
		if p.RequiredN != nil && p.RequiredPerGroup != nil {
			fmt.Fprintf(w, "  Required N for %.0f%% power at α=%.2f: %d total (%d per group)\n",
				float64(p.Power)*100, float64(p.Alpha), *p.RequiredN, *p.RequiredPerGroup)
		}
	}

	if report.Alternative != nil || report.Percentile != nil {
		fmt.Fprintln(w, "\nAlternative grouping:")
		if report.Alternative != nil {
			writeTest(w, report.Alternative)
		}
		if report.Percentile != nil {
			writeTest(w, report.Percentile)
		}
	}

	if jt := report.JoinTiming; jt != nil {
		fmt.Fprintln(w, "\nJoining time (0=early, 1=late):")
		fmt.Fprintf(w, "  Stayed mean: %.4f\n", float64(jt.StayMean))
		fmt.Fprintf(w, "  Left mean:   %.4f\n", float64(jt.LeaveMean))
		if jt.TTest != nil {
			writeTest(w, jt.TTest)
		}
		fmt.Fprintf(w, "  Logistic coef: %.4f (odds ratio %.4f)\n", float64(jt.Coef), float64(jt.OddsRatio))
		fmt.Fprintf(w, "  P(leave | early) = %.4f\n", float64(jt.ProbEarly))
		fmt.Fprintf(w, "  P(leave | late)  = %.4f\n", float64(jt.ProbLate))
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "\n⚠️  %d warnings:\n", len(report.Warnings))
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}

	if len(report.Outputs) > 0 {
		fmt.Fprintln(w, "\nWritten:")
		for _, o := range report.Outputs {
			fmt.Fprintf(w, "  - %s\n", o)
		}
	}

	return nil
}

func writeTest(w io.Writer, t *TestSummary) {
	verdict := "not significant"
	if t.Significant {
		verdict = "significant"
	}
	fmt.Fprintf(w, "%s: statistic=%.2f p=%.4f (%s)\n", t.Name, float64(t.Statistic), float64(t.PValue), verdict)
	if t.Detail != "" {
		fmt.Fprintf(w, "  %s\n", t.Detail)
	}
}

func num(f Float) string {
	s := f.String()
	if s == "" {
		return "NaN"
	}
	if v := float64(f); math.IsInf(v, 0) || v == math.Trunc(v) {
		return s
	}
	return fmt.Sprintf("%.3f", float64(f))
}
