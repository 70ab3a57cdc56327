package match

import (
	"log/slog"
	"sort"

	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/scan"
)

// Pair is one project present on both sides
type Pair struct {
	Key   models.MatchKey
	Left  scan.Entry
	Right scan.Entry
}

// Side identifies which input a duplicate came from
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Duplicate records a second file deriving an already-seen key. The entry
// that sorts first by file name is kept.
type Duplicate struct {
	Side    Side
	Key     models.MatchKey
	Kept    string
	Dropped string
}

// Result is the outcome of matching two scans
type Result struct {
	Pairs          []Pair
	UnmatchedLeft  []models.MatchKey
	UnmatchedRight []models.MatchKey
	Duplicates     []Duplicate
}

// Keys returns the matched keys in sorted order
func (r *Result) Keys() []models.MatchKey {
	keys := make([]models.MatchKey, len(r.Pairs))
	for i, p := range r.Pairs {
		keys[i] = p.Key
	}
	return keys
}

// Lookup returns the pair for key
func (r *Result) Lookup(key models.MatchKey) (Pair, bool) {
	i := sort.Search(len(r.Pairs), func(i int) bool { return r.Pairs[i].Key >= key })
	if i < len(r.Pairs) && r.Pairs[i].Key == key {
		return r.Pairs[i], true
	}
	return Pair{}, false
}

// Match pairs entries by exact key equality. The matched key set is the
// intersection of both sides; everything else is reported as unmatched and
// logged, never treated as an error.
func Match(left, right []scan.Entry) *Result {
	logger := slog.Default().With("component", "match")
	result := &Result{}

	leftByKey := index(left, SideLeft, result)
	rightByKey := index(right, SideRight, result)

	for key, l := range leftByKey {
		r, ok := rightByKey[key]
		if !ok {
			result.UnmatchedLeft = append(result.UnmatchedLeft, key)
			continue
		}
		result.Pairs = append(result.Pairs, Pair{Key: key, Left: l, Right: r})
	}
	for key := range rightByKey {
		if _, ok := leftByKey[key]; !ok {
			result.UnmatchedRight = append(result.UnmatchedRight, key)
		}
	}

	sort.Slice(result.Pairs, func(i, j int) bool { return result.Pairs[i].Key < result.Pairs[j].Key })
	sortKeys(result.UnmatchedLeft)
	sortKeys(result.UnmatchedRight)

	for _, key := range result.UnmatchedLeft {
		logger.Warn("no matching file on right side", "project", key)
	}
	for _, key := range result.UnmatchedRight {
		logger.Warn("no matching file on left side", "project", key)
	}
	for _, d := range result.Duplicates {
		logger.Warn("duplicate project key", "side", d.Side, "project", d.Key, "kept", d.Kept, "dropped", d.Dropped)
	}

	logger.Info("matched projects",
		"matched", len(result.Pairs),
		"unmatched_left", len(result.UnmatchedLeft),
		"unmatched_right", len(result.UnmatchedRight))

	return result
}

func index(entries []scan.Entry, side Side, result *Result) map[models.MatchKey]scan.Entry {
	sorted := append([]scan.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	byKey := make(map[models.MatchKey]scan.Entry, len(sorted))
	for _, e := range sorted {
		if kept, ok := byKey[e.Key]; ok {
			result.Duplicates = append(result.Duplicates, Duplicate{
				Side:    side,
				Key:     e.Key,
				Kept:    kept.Name,
				Dropped: e.Name,
			})
			continue
		}
		byKey[e.Key] = e
	}
	return byKey
}

func sortKeys(keys []models.MatchKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}
