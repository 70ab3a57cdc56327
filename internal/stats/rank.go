package stats

import "sort"

// rankData assigns average ranks (1-based) to values, ties sharing the mean
// of their positions. tieTerm is sum(t^3 - t) over tie groups.
func rankData(values []float64) (ranks []float64, tieTerm float64) {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && values[order[j]] == values[order[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		if t := float64(j - i); t > 1 {
			tieTerm += t*t*t - t
		}
		i = j
	}
	return ranks, tieTerm
}

// groupRanks ranks the pooled sample and returns each group's rank sum
func groupRanks(groups []Group) (sums []float64, n int, tieTerm float64) {
	all := Pool(groups)
	ranks, tieTerm := rankData(all)

	sums = make([]float64, len(groups))
	pos := 0
	for i, g := range groups {
		for range g.Values {
			sums[i] += ranks[pos]
			pos++
		}
	}
	return sums, len(all), tieTerm
}
