// Package reports derives the simple aggregate analyses and their
// threshold-based recommendations from the canonical transaction table.
// Every function treats its input as read-only.
package reports

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// quantile returns the linearly interpolated p-quantile of values.
func quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// topN returns the n largest entries of m by value, ties broken by key so
// repeated calls agree.
func topN(m map[string]float64, n int) []string {
	keys := sortedKeys(m)
	sort.SliceStable(keys, func(a, b int) bool {
		return m[keys[a]] > m[keys[b]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
