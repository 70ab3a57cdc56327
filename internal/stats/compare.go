package stats

import (
	"math"
	"math/rand/v2"
)

// Comparison is the omnibus result over the groups of one table
type Comparison struct {
	Test TestResult
	// EtaSquared is set for Kruskal-Wallis only (NaN otherwise)
	EtaSquared float64
	PostHoc    []PairwiseResult
	Groups     []string
	N          int
}

// HasEffectSize reports whether EtaSquared was computed
func (c *Comparison) HasEffectSize() bool {
	return !math.IsNaN(c.EtaSquared)
}

// CompareGroups picks the test by group count: two groups get the
// Mann-Whitney U test, three or more get Kruskal-Wallis plus eta squared.
// When the omnibus test is significant and there are more than two groups,
// Dunn's post-hoc test with Benjamini-Hochberg adjustment follows.
func CompareGroups(groups []Group) (*Comparison, error) {
	groups = nonEmpty(groups)
	if len(groups) < 2 {
		return nil, ErrTooFewGroups
	}

	c := &Comparison{EtaSquared: math.NaN()}
	for _, g := range groups {
		c.Groups = append(c.Groups, g.Name)
		c.N += len(g.Values)
	}

	if len(groups) == 2 {
		res, err := MannWhitneyU(groups[0].Values, groups[1].Values)
		if err != nil {
			return nil, err
		}
		c.Test = res
		return c, nil
	}

	res, err := KruskalWallis(groups)
	if err != nil {
		return nil, err
	}
	c.Test = res
	c.EtaSquared = EtaSquared(res.Statistic, c.N)

	if res.Significant() {
		posthoc, err := Dunn(groups)
		if err != nil {
			return nil, err
		}
		c.PostHoc = posthoc
	}
	return c, nil
}

// NewRand returns the seeded generator used for every resampling step, so
// a run with the same seed draws the same rows
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Sample draws k distinct indices from [0, n) in draw order. k is clamped
// to n.
func Sample(rng *rand.Rand, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	return rng.Perm(n)[:k]
}
