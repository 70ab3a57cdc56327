package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/stats"
)

// ErrUnknownCategory is returned by Mapping for a value outside its domain
var ErrUnknownCategory = errors.New("unknown category")

// Thresholds partitions the real line into len(Cuts)+1 labelled intervals.
// By default intervals are closed on the left: v belongs to Labels[i] where
// i is the number of cuts <= v, so thresholds (15, 30) give
// [-inf,15) small, [15,30) medium, [30,+inf) large.
// RightClosed flips that to (a, b], the pandas cut convention.
type Thresholds[T any] struct {
	Cuts        []float64
	Labels      []T
	RightClosed bool
}

// NewThresholds validates and builds a threshold classifier
func NewThresholds[T any](cuts []float64, labels []T) (Thresholds[T], error) {
	th := Thresholds[T]{
		Cuts:   append([]float64(nil), cuts...),
		Labels: append([]T(nil), labels...),
	}
	return th, th.Validate()
}

// Validate checks that cuts are finite and strictly ascending and that there
// is exactly one more label than cuts
func (th Thresholds[T]) Validate() error {
	if len(th.Labels) != len(th.Cuts)+1 {
		return fmt.Errorf("need %d labels for %d cuts, got %d", len(th.Cuts)+1, len(th.Cuts), len(th.Labels))
	}
	for i, c := range th.Cuts {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("cut %d is not finite: %v", i, c)
		}
		if i > 0 && c <= th.Cuts[i-1] {
			return fmt.Errorf("cuts must be strictly ascending: %v", th.Cuts)
		}
	}
	return nil
}

// Classify returns the label of v. Every value except NaN has a label.
func (th Thresholds[T]) Classify(v float64) (T, error) {
	var zero T
	if math.IsNaN(v) {
		return zero, fmt.Errorf("cannot classify NaN")
	}
	if len(th.Labels) != len(th.Cuts)+1 {
		return zero, th.Validate()
	}

	var i int
	if th.RightClosed {
		i = sort.Search(len(th.Cuts), func(j int) bool { return th.Cuts[j] >= v })
	} else {
		i = sort.Search(len(th.Cuts), func(j int) bool { return th.Cuts[j] > v })
	}
	return th.Labels[i], nil
}

// SizeThresholds is the project size classifier for two row-count cuts
func SizeThresholds(cuts []float64) (Thresholds[models.SizeClass], error) {
	return NewThresholds(cuts, models.SizeClasses)
}

// PercentileThresholds derives cuts from the given percentiles (0-100) of
// values and uses the pandas cut convention, e.g. tertile size groups.
func PercentileThresholds[T any](values, percentiles []float64, labels []T) (Thresholds[T], error) {
	cuts := make([]float64, len(percentiles))
	for i, p := range percentiles {
		q, err := stats.Percentile(values, p)
		if err != nil {
			return Thresholds[T]{}, err
		}
		cuts[i] = q
	}

	th, err := NewThresholds(cuts, labels)
	if err != nil {
		return th, fmt.Errorf("percentile cuts %v: %w", cuts, err)
	}
	th.RightClosed = true
	return th, nil
}

// Mapping is a categorical classifier: raw label -> enumerated value
type Mapping[T any] struct {
	Values map[string]T
}

// Classify looks up the trimmed raw label
func (m Mapping[T]) Classify(raw string) (T, error) {
	if v, ok := m.Values[strings.TrimSpace(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
}

// JoinTimingMapping builds the join-timing classifier from configuration,
// e.g. {"早": "early", "晚": "late"}
func JoinTimingMapping(raw map[string]string) (Mapping[models.JoinTiming], error) {
	m := Mapping[models.JoinTiming]{Values: make(map[string]models.JoinTiming, len(raw))}
	for label, value := range raw {
		jt, err := models.ParseJoinTiming(value)
		if err != nil {
			return m, fmt.Errorf("join timing %q: %w", label, err)
		}
		m.Values[label] = jt
	}
	return m, nil
}

