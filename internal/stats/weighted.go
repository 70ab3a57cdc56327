package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WeightMethod selects how observations are weighted by group size
type WeightMethod string

const (
	// WeightInverse gives every group the same total weight (1/n each)
	WeightInverse WeightMethod = "inverse"
	// WeightEqual weights every observation the same
	WeightEqual WeightMethod = "equal"
	// WeightSqrt is the compromise 1/sqrt(n)
	WeightSqrt WeightMethod = "sqrt"
)

// ParseWeightMethod validates a configured method name
func ParseWeightMethod(s string) (WeightMethod, error) {
	switch m := WeightMethod(s); m {
	case WeightInverse, WeightEqual, WeightSqrt:
		return m, nil
	}
	return "", fmt.Errorf("unknown weight method %q", s)
}

// GroupWeights returns one weight per observation, in pooled group order,
// normalized to sum to 1
func GroupWeights(groups []Group, method WeightMethod) ([]float64, error) {
	var weights []float64
	for _, g := range groups {
		n := float64(len(g.Values))
		var w float64
		switch method {
		case WeightInverse:
			w = 1 / n
		case WeightEqual:
			w = 1
		case WeightSqrt:
			w = 1 / math.Sqrt(n)
		default:
			return nil, fmt.Errorf("unknown weight method %q", method)
		}
		for range g.Values {
			weights = append(weights, w)
		}
	}
	if len(weights) == 0 {
		return nil, ErrEmpty
	}
	floats.Scale(1/floats.Sum(weights), weights)
	return weights, nil
}

// WeightedSummary is the weighted description of one group
type WeightedSummary struct {
	Group      string
	Mean       float64
	Std        float64 // population form (ddof=0)
	N          int
	EffectiveN float64 // (sum w)^2 / sum w^2
}

// WeightedStats describes each non-empty group with the weights computed
// over all groups together
func WeightedStats(groups []Group, method WeightMethod) ([]WeightedSummary, error) {
	groups = nonEmpty(groups)
	weights, err := GroupWeights(groups, method)
	if err != nil {
		return nil, err
	}

	out := make([]WeightedSummary, 0, len(groups))
	pos := 0
	for _, g := range groups {
		w := weights[pos : pos+len(g.Values)]
		pos += len(g.Values)

		mean, variance := stat.PopMeanVariance(g.Values, w)
		sum := floats.Sum(w)
		out = append(out, WeightedSummary{
			Group:      g.Name,
			Mean:       mean,
			Std:        math.Sqrt(variance),
			N:          len(g.Values),
			EffectiveN: sum * sum / floats.Dot(w, w),
		})
	}
	return out, nil
}
