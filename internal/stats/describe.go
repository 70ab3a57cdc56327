// Package stats computes the group statistics and hypothesis tests used by
// the attrition analyses. Distributions and optimization come from gonum;
// conventions (ddof, quantile interpolation, continuity correction) follow
// the pandas/scipy defaults the published tables were produced with.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Alpha is the fixed significance level
const Alpha = 0.05

var (
	// ErrEmpty is returned for an empty sample
	ErrEmpty = errors.New("empty sample")
	// ErrTooFewGroups is returned when a comparison needs more groups
	ErrTooFewGroups = errors.New("need at least two non-empty groups")
	// ErrConstant is returned when every observation is identical
	ErrConstant = errors.New("all values are identical")
)

// Group is one labelled sample
type Group struct {
	Name   string
	Values []float64
}

// Summary mirrors pandas describe(): sample std (ddof=1) and linearly
// interpolated quartiles
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Describe summarizes values. Std is NaN for a single observation.
func Describe(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrEmpty
	}

	sorted := sortedCopy(values)
	mean, variance := stat.MeanVariance(sorted, nil)

	return Summary{
		Count:  len(sorted),
		Mean:   mean,
		Std:    math.Sqrt(variance),
		Min:    floats.Min(sorted),
		Q1:     quantileSorted(sorted, 0.25),
		Median: quantileSorted(sorted, 0.5),
		Q3:     quantileSorted(sorted, 0.75),
		Max:    floats.Max(sorted),
	}, nil
}

// GroupSummary is the describe() row of one group
type GroupSummary struct {
	Group string
	Summary
}

// GroupDescribe describes every non-empty group, in input order
func GroupDescribe(groups []Group) []GroupSummary {
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		s, err := Describe(g.Values)
		if err != nil {
			continue
		}
		out = append(out, GroupSummary{Group: g.Name, Summary: s})
	}
	return out
}

// Percentile returns the p-th percentile (0-100) with linear interpolation
// between closest ranks, numpy's default method
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return math.NaN(), ErrEmpty
	}
	if p < 0 || p > 100 || math.IsNaN(p) {
		return math.NaN(), fmt.Errorf("percentile %v outside [0, 100]", p)
	}
	return quantileSorted(sortedCopy(values), p/100), nil
}

// Median of values; NaN for an empty sample
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return quantileSorted(sortedCopy(values), 0.5)
}

// Pool concatenates every group's values
func Pool(groups []Group) []float64 {
	var all []float64
	for _, g := range groups {
		all = append(all, g.Values...)
	}
	return all
}

// quantileSorted is the type-7 estimator. gonum's stat.Quantile offers the
// empirical and type-4 estimators only, neither of which matches pandas.
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := q * float64(n-1)
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func sortedCopy(values []float64) []float64 {
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	return s
}

func nonEmpty(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Values) > 0 {
			out = append(out, g)
		}
	}
	return out
}
