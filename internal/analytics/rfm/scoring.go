package rfm

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

const scoreBins = 5

// quantileEdges returns the deduplicated qcut-style bin edges for values.
// Skewed distributions routinely produce duplicate quantile edges; adjacent
// bins collapse instead of failing, so fewer than five effective buckets is
// a legal outcome.
func quantileEdges(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	edges := make([]float64, 0, scoreBins+1)
	for i := 0; i <= scoreBins; i++ {
		p := float64(i) / scoreBins
		edge := stat.Quantile(p, stat.LinInterp, sorted, nil)
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}
	return edges
}

// scoreDirect assigns each value a 1-based bucket label where the highest
// values land in the highest bucket.
func scoreDirect(values []float64) []int {
	edges := quantileEdges(values)
	scores := make([]int, len(values))
	for i, v := range values {
		scores[i] = bucketOf(v, edges) + 1
	}
	return scores
}

// scoreInverse assigns the highest label to the lowest values; recency is
// scored this way so the most recent purchase gets the top score.
func scoreInverse(values []float64) []int {
	edges := quantileEdges(values)
	buckets := len(edges) - 1
	if buckets < 1 {
		buckets = 1
	}
	scores := make([]int, len(values))
	for i, v := range values {
		scores[i] = buckets - bucketOf(v, edges)
	}
	return scores
}

// bucketOf places v in a right-closed bucket (a,b]; values at or below the
// first edge land in bucket zero.
func bucketOf(v float64, edges []float64) int {
	if len(edges) < 2 {
		return 0
	}
	for i := 1; i < len(edges)-1; i++ {
		if v <= edges[i] {
			return i - 1
		}
	}
	return len(edges) - 2
}

// rankFirst replicates rank(method="first"): ties resolve by original
// position, so ranking is stable across runs for a fixed input order.
func rankFirst(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks := make([]float64, len(values))
	for pos, i := range idx {
		ranks[i] = float64(pos + 1)
	}
	return ranks
}
