package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestResult is the outcome of one hypothesis test
type TestResult struct {
	Name      string
	Statistic float64
	PValue    float64
	DF        float64 // degrees of freedom where the test has them
}

// Significant reports p < Alpha
func (r TestResult) Significant() bool {
	return r.PValue < Alpha
}

// exactMWULimit is the largest size of the smaller group for which the
// exact Mann-Whitney distribution is used when there are no ties
const exactMWULimit = 8

// MannWhitneyU is the two-sided rank-sum test. The statistic is U of x.
// Tie-free samples where either group is small use the exact null
// distribution, everything else
// the normal approximation with tie and continuity correction.
func MannWhitneyU(x, y []float64) (TestResult, error) {
	n1, n2 := len(x), len(y)
	if n1 == 0 || n2 == 0 {
		return TestResult{}, ErrEmpty
	}

	sums, n, tieTerm := groupRanks([]Group{{Values: x}, {Values: y}})
	u1 := sums[0] - float64(n1*(n1+1))/2
	u2 := float64(n1*n2) - u1
	u := math.Max(u1, u2)

	result := TestResult{Name: "Mann-Whitney U", Statistic: u1}

	if (n1 <= exactMWULimit || n2 <= exactMWULimit) && tieTerm == 0 {
		result.PValue = math.Min(1, 2*mwuExactSF(int(math.Round(u)), n1, n2))
		return result, nil
	}

	mu := float64(n1*n2) / 2
	nf := float64(n)
	s := math.Sqrt(float64(n1*n2) / 12 * ((nf + 1) - tieTerm/(nf*(nf-1))))
	if s == 0 {
		return TestResult{}, ErrConstant
	}
	z := (u - mu - 0.5) / s
	result.PValue = math.Min(1, 2*distuv.UnitNormal.Survival(z))
	return result, nil
}

// mwuExactSF is P(U >= u) under the null for sample sizes m and n
func mwuExactSF(u, m, n int) float64 {
	counts := mwuCounts(m, n)
	var total, tail float64
	for k, c := range counts {
		total += c
		if k >= u {
			tail += c
		}
	}
	return tail / total
}

// mwuCounts[k] is the number of orderings of m x's and n y's with U = k.
// These are the partitions of k into at most min(m, n) parts no larger than
// max(m, n), built up one column bound at a time.
func mwuCounts(m, n int) []float64 {
	if m > n {
		m, n = n, m
	}
	size := m*n + 1

	// g[i][k]: partitions of k into at most i parts, each <= the current bound
	g := make([][]float64, m+1)
	for i := range g {
		g[i] = make([]float64, size)
		g[i][0] = 1
	}
	for j := 1; j <= n; j++ {
		for i := 1; i <= m; i++ {
			// either fewer than i parts, or i parts that each drop by one
			for k := i * j; k >= i; k-- {
				g[i][k] = g[i-1][k] + g[i][k-i]
			}
			for k := i - 1; k >= 1; k-- {
				g[i][k] = g[i-1][k]
			}
		}
	}
	return g[m]
}

// KruskalWallis is the rank-based one-way ANOVA with tie correction
func KruskalWallis(groups []Group) (TestResult, error) {
	groups = nonEmpty(groups)
	if len(groups) < 2 {
		return TestResult{}, ErrTooFewGroups
	}

	sums, n, tieTerm := groupRanks(groups)
	nf := float64(n)

	correction := 1 - tieTerm/(nf*nf*nf-nf)
	if correction == 0 {
		return TestResult{}, ErrConstant
	}

	var ss float64
	for i, g := range groups {
		ss += sums[i] * sums[i] / float64(len(g.Values))
	}
	h := (12/(nf*(nf+1))*ss - 3*(nf+1)) / correction
	df := float64(len(groups) - 1)

	return TestResult{
		Name:      "Kruskal-Wallis",
		Statistic: h,
		PValue:    distuv.ChiSquared{K: df}.Survival(h),
		DF:        df,
	}, nil
}

// EtaSquared is the Kruskal-Wallis effect size H/(N-1)
func EtaSquared(h float64, n int) float64 {
	return h / float64(n-1)
}

// WelchTTest is the two-sided t-test without the equal variance assumption
func WelchTTest(x, y []float64) (TestResult, error) {
	if len(x) < 2 || len(y) < 2 {
		return TestResult{}, fmt.Errorf("welch t-test needs at least 2 observations per sample, got %d and %d", len(x), len(y))
	}

	mx, vx := stat.MeanVariance(x, nil)
	my, vy := stat.MeanVariance(y, nil)
	ax := vx / float64(len(x))
	ay := vy / float64(len(y))

	se := math.Sqrt(ax + ay)
	if se == 0 {
		return TestResult{}, ErrConstant
	}

	t := (mx - my) / se
	df := (ax + ay) * (ax + ay) / (ax*ax/float64(len(x)-1) + ay*ay/float64(len(y)-1))

	return TestResult{
		Name:      "Welch t",
		Statistic: t,
		PValue:    2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t)),
		DF:        df,
	}, nil
}

// Levene tests equality of variances using deviations from the group
// medians (Brown-Forsythe variant)
func Levene(groups []Group) (TestResult, error) {
	groups = nonEmpty(groups)
	k := len(groups)
	if k < 2 {
		return TestResult{}, ErrTooFewGroups
	}

	dev := make([]Group, k)
	var n int
	for i, g := range groups {
		med := Median(g.Values)
		z := make([]float64, len(g.Values))
		for j, v := range g.Values {
			z[j] = math.Abs(v - med)
		}
		dev[i] = Group{Name: g.Name, Values: z}
		n += len(z)
	}
	if n <= k {
		return TestResult{}, fmt.Errorf("levene needs more observations (%d) than groups (%d)", n, k)
	}

	grand := stat.Mean(Pool(dev), nil)
	var between, within float64
	for _, d := range dev {
		m := stat.Mean(d.Values, nil)
		between += float64(len(d.Values)) * (m - grand) * (m - grand)
		for _, z := range d.Values {
			within += (z - m) * (z - m)
		}
	}
	if within == 0 {
		return TestResult{}, ErrConstant
	}

	d1, d2 := float64(k-1), float64(n-k)
	w := d2 / d1 * between / within
	return TestResult{
		Name:      "Levene",
		Statistic: w,
		PValue:    distuv.F{D1: d1, D2: d2}.Survival(w),
		DF:        d1,
	}, nil
}
