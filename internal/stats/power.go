package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TargetPower is the conventional 80% power used for sample size planning
const TargetPower = 0.8

// CohensF is the ANOVA effect size: the standard deviation of the group
// means around the grand mean (groups weighted equally) divided by the
// sample standard deviation of all observations
func CohensF(groups []Group) (float64, error) {
	groups = nonEmpty(groups)
	if len(groups) < 2 {
		return 0, ErrTooFewGroups
	}

	all := Pool(groups)
	grand, variance := stat.MeanVariance(all, nil)
	if variance == 0 || math.IsNaN(variance) {
		return 0, ErrConstant
	}

	var ss float64
	for _, g := range groups {
		d := stat.Mean(g.Values, nil) - grand
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(groups))) / math.Sqrt(variance), nil
}

// AnovaPower is the power of the one-way ANOVA F test with nobs total
// observations in k groups at effect size f
func AnovaPower(f, nobs float64, k int, alpha float64) float64 {
	d1 := float64(k - 1)
	d2 := nobs - float64(k)
	if d1 <= 0 || d2 <= 0 {
		return math.NaN()
	}
	crit := distuv.F{D1: d1, D2: d2}.Quantile(1 - alpha)
	return noncentralFSurvival(crit, d1, d2, f*f*nobs)
}

// RequiredN solves AnovaPower(f, n, k, alpha) = power for the total sample
// size n. The result is continuous; round up for planning.
func RequiredN(f float64, k int, alpha, power float64) (float64, error) {
	if f <= 0 || math.IsNaN(f) {
		return 0, fmt.Errorf("effect size must be positive, got %v", f)
	}
	if k < 2 {
		return 0, ErrTooFewGroups
	}

	lo := float64(k) + 1
	if AnovaPower(f, lo, k, alpha) >= power {
		return lo, nil
	}

	hi := 2 * lo
	for AnovaPower(f, hi, k, alpha) < power {
		hi *= 2
		if hi > 1e9 {
			return 0, fmt.Errorf("effect size %v too small to reach power %v", f, power)
		}
	}

	for i := 0; i < 200 && hi-lo > 1e-8; i++ {
		mid := (lo + hi) / 2
		if AnovaPower(f, mid, k, alpha) < power {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, nil
}

// noncentralFSurvival is P(F' > x) for the noncentral F distribution with
// noncentrality lambda, as a Poisson mixture of regularized incomplete betas
func noncentralFSurvival(x, d1, d2, lambda float64) float64 {
	if x <= 0 {
		return 1
	}
	y := d1 * x / (d1*x + d2)
	half := lambda / 2

	if half == 0 {
		return 1 - mathext.RegIncBeta(d1/2, d2/2, y)
	}

	maxJ := int(half + 12*math.Sqrt(half+1) + 50)
	var cdf float64
	for j := 0; j <= maxJ; j++ {
		lg, _ := math.Lgamma(float64(j) + 1)
		w := math.Exp(-half + float64(j)*math.Log(half) - lg)
		cdf += w * mathext.RegIncBeta(d1/2+float64(j), d2/2, y)
	}
	return math.Max(0, math.Min(1, 1-cdf))
}
