package aggregate

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rohankatakam/attrition/internal/table"
)

// NormalizeKey coerces a join key cell to its canonical text: trimmed, NFC,
// and integral numbers without a fractional part ("12.0" -> "12"), so keys
// read as numbers on one side and strings on the other still compare equal.
func NormalizeKey(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && f == math.Trunc(f) && strings.ContainsAny(s, ".eE") {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

// Concat stacks tables with the same column set. Columns are aligned by
// name in the order of the first table. Rows are never deduplicated.
func Concat(tables ...*table.Table) (*table.Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("nothing to concatenate")
	}

	first := tables[0]
	out := table.New(first.Columns...)
	for n, t := range tables {
		if len(t.Columns) != len(first.Columns) {
			return nil, fmt.Errorf("table %d has %d columns, expected %d", n, len(t.Columns), len(first.Columns))
		}
		idx := make([]int, len(first.Columns))
		for j, c := range first.Columns {
			idx[j] = t.Index(c)
			if idx[j] < 0 {
				return nil, fmt.Errorf("table %d: %w", n, &table.MissingColumnError{Column: c})
			}
		}
		for _, row := range t.Rows {
			cells := make([]string, len(idx))
			for j, i := range idx {
				cells[j] = row[i]
			}
			out.Rows = append(out.Rows, cells)
		}
	}
	return out, nil
}

// LeftJoin keeps every row of left, in order, and appends the requested
// columns of right (all non-key columns when none are given). Rows without a
// match get the missing marker. When right repeats a key the first row wins,
// so the result always has exactly left.Len() rows. Right columns whose
// name already exists in left get a "_y" suffix.
func LeftJoin(left, right *table.Table, key string, columns ...string) (*table.Table, error) {
	logger := slog.Default().With("component", "aggregate")

	if err := left.Require("left", key); err != nil {
		return nil, err
	}
	if err := right.Require("right", key); err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		for _, c := range right.Columns {
			if c != key {
				columns = append(columns, c)
			}
		}
	}
	if err := right.Require("right", columns...); err != nil {
		return nil, err
	}

	rk := right.Index(key)
	lookup := make(map[string][]string, right.Len())
	duplicates := 0
	for _, row := range right.Rows {
		k := NormalizeKey(row[rk])
		if k == table.Missing {
			continue
		}
		if _, ok := lookup[k]; ok {
			duplicates++
			continue
		}
		lookup[k] = row
	}
	if duplicates > 0 {
		logger.Warn("duplicate join keys on right side, first row kept", "key", key, "duplicates", duplicates)
	}

	outCols := append([]string(nil), left.Columns...)
	rIdx := make([]int, len(columns))
	for j, c := range columns {
		rIdx[j] = right.Index(c)
		name := c
		if left.Index(c) >= 0 {
			name = c + "_y"
		}
		outCols = append(outCols, name)
	}

	out := table.New(outCols...)
	lk := left.Index(key)
	unmatched := 0
	for _, row := range left.Rows {
		cells := append(make([]string, 0, len(outCols)), row...)
		match, ok := lookup[NormalizeKey(row[lk])]
		if !ok {
			unmatched++
		}
		for _, i := range rIdx {
			if ok {
				cells = append(cells, match[i])
			} else {
				cells = append(cells, table.Missing)
			}
		}
		out.Rows = append(out.Rows, cells)
	}

	logger.Debug("left join", "key", key, "rows", out.Len(), "unmatched", unmatched)
	return out, nil
}

// KeySet collects the normalized, non-missing values of column
func KeySet(t *table.Table, column string) (map[string]struct{}, error) {
	if err := t.Require("", column); err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, t.Len())
	for _, v := range t.Column(column) {
		if k := NormalizeKey(v); k != table.Missing {
			set[k] = struct{}{}
		}
	}
	return set, nil
}

// FilterByMembership keeps the rows whose column value is in set, in their
// original order
func FilterByMembership(t *table.Table, column string, set map[string]struct{}) (*table.Table, error) {
	if err := t.Require("", column); err != nil {
		return nil, err
	}
	i := t.Index(column)
	return t.Filter(func(row []string) bool {
		_, ok := set[NormalizeKey(row[i])]
		return ok
	}), nil
}
