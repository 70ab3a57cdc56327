package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// PairwiseResult is one cell of a post-hoc comparison
type PairwiseResult struct {
	A         string
	B         string
	Z         float64
	PValue    float64
	PAdjusted float64
}

// Dunn runs Dunn's pairwise test on the pooled ranks of every group and
// adjusts the p-values with Benjamini-Hochberg. Pairs come in (i<j) order.
func Dunn(groups []Group) ([]PairwiseResult, error) {
	groups = nonEmpty(groups)
	if len(groups) < 2 {
		return nil, ErrTooFewGroups
	}

	sums, n, tieTerm := groupRanks(groups)
	nf := float64(n)
	variance := nf*(nf+1)/12 - tieTerm/(12*(nf-1))
	if variance <= 0 {
		return nil, ErrConstant
	}

	var results []PairwiseResult
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			ni, nj := float64(len(groups[i].Values)), float64(len(groups[j].Values))
			diff := sums[i]/ni - sums[j]/nj
			z := math.Abs(diff) / math.Sqrt(variance*(1/ni+1/nj))
			results = append(results, PairwiseResult{
				A:      groups[i].Name,
				B:      groups[j].Name,
				Z:      z,
				PValue: 2 * distuv.UnitNormal.Survival(z),
			})
		}
	}

	ps := make([]float64, len(results))
	for i, r := range results {
		ps[i] = r.PValue
	}
	for i, adj := range BenjaminiHochberg(ps) {
		results[i].PAdjusted = adj
	}
	return results, nil
}

// BenjaminiHochberg returns FDR-adjusted p-values in input order
func BenjaminiHochberg(p []float64) []float64 {
	m := len(p)
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return p[order[a]] < p[order[b]] })

	adjusted := make([]float64, m)
	running := 1.0
	for rank := m; rank >= 1; rank-- {
		i := order[rank-1]
		v := p[i] * float64(m) / float64(rank)
		if v < running {
			running = v
		}
		adjusted[i] = running
	}
	return adjusted
}

// PairwiseMatrix lays pairwise adjusted p-values out as a symmetric matrix
// over names with 1 on the diagonal
func PairwiseMatrix(names []string, results []PairwiseResult) [][]float64 {
	pos := make(map[string]int, len(names))
	for i, n := range names {
		pos[n] = i
	}

	m := make([][]float64, len(names))
	for i := range m {
		m[i] = make([]float64, len(names))
		for j := range m[i] {
			m[i][j] = math.NaN()
		}
		m[i][i] = 1
	}
	for _, r := range results {
		a, okA := pos[r.A]
		b, okB := pos[r.B]
		if okA && okB {
			m[a][b] = r.PAdjusted
			m[b][a] = r.PAdjusted
		}
	}
	return m
}
