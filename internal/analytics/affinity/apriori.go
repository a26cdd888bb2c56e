// Package affinity mines frequent itemsets over per-invoice baskets and
// ranks association rules by lift.
package affinity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/retail-lens/backend/internal/dataset"
)

type Rule struct {
	Antecedents    string  `json:"antecedents"`
	Consequents    string  `json:"consequents"`
	Support        float64 `json:"support"`
	Confidence     float64 `json:"confidence"`
	Lift           float64 `json:"lift"`
	Recommendation string  `json:"recommendation"`
}

type Config struct {
	MinSupport float64
	MaxRules   int
	// MinItemCount filters out rarely seen descriptions before mining,
	// which keeps the candidate space tractable on large exports.
	MinItemCount int
}

func DefaultConfig() Config {
	return Config{MinSupport: 0.005, MaxRules: 10, MinItemCount: 5}
}

const maxItemsetSize = 3

// Rules builds per-invoice baskets of purchased descriptions, finds
// frequent itemsets up to three items and derives association rules with
// lift of at least 1, ranked by lift. An empty result is valid output, not
// an error.
func Rules(table *dataset.Table, cfg Config) []Rule {
	if cfg.MinSupport <= 0 {
		cfg.MinSupport = 0.005
	}
	if cfg.MaxRules <= 0 {
		cfg.MaxRules = 10
	}

	itemCounts := make(map[string]int)
	for _, row := range table.Rows {
		if row.Quantity > 0 && row.Description != "" {
			itemCounts[row.Description]++
		}
	}

	baskets := make(map[string]map[string]struct{})
	for _, row := range table.Rows {
		if row.Quantity <= 0 || row.Description == "" {
			continue
		}
		if itemCounts[row.Description] <= cfg.MinItemCount {
			continue
		}
		basket, ok := baskets[row.InvoiceNo]
		if !ok {
			basket = make(map[string]struct{})
			baskets[row.InvoiceNo] = basket
		}
		basket[row.Description] = struct{}{}
	}
	if len(baskets) == 0 {
		return []Rule{}
	}

	total := float64(len(baskets))
	support := mineItemsets(baskets, cfg.MinSupport)

	var rules []Rule
	for key, supp := range support {
		items := strings.Split(key, "\x1f")
		if len(items) < 2 {
			continue
		}
		setSupport := supp / total
		for _, split := range subsetSplits(items) {
			antSupport, ok := support[itemsetKey(split.antecedent)]
			if !ok || antSupport == 0 {
				continue
			}
			conSupport, ok := support[itemsetKey(split.consequent)]
			if !ok || conSupport == 0 {
				continue
			}
			confidence := supp / antSupport
			lift := confidence / (conSupport / total)
			if lift < 1 {
				continue
			}
			ant := strings.Join(split.antecedent, ", ")
			con := strings.Join(split.consequent, ", ")
			rules = append(rules, Rule{
				Antecedents: ant,
				Consequents: con,
				Support:     setSupport,
				Confidence:  confidence,
				Lift:        lift,
				Recommendation: fmt.Sprintf(
					"Bundle %s with %s (Confidence: %.2f, Lift: %.2f)",
					ant, con, confidence, lift),
			})
		}
	}

	sort.SliceStable(rules, func(a, b int) bool {
		if rules[a].Lift != rules[b].Lift {
			return rules[a].Lift > rules[b].Lift
		}
		return rules[a].Antecedents < rules[b].Antecedents
	})
	if len(rules) > cfg.MaxRules {
		rules = rules[:cfg.MaxRules]
	}
	if rules == nil {
		rules = []Rule{}
	}
	return rules
}

// mineItemsets returns basket counts for every itemset up to
// maxItemsetSize whose support clears the threshold. Candidates at each
// level extend the previous level's survivors, apriori-style.
func mineItemsets(baskets map[string]map[string]struct{}, minSupport float64) map[string]float64 {
	total := float64(len(baskets))
	minCount := minSupport * total

	counts := make(map[string]float64)
	for _, basket := range baskets {
		for item := range basket {
			counts[item]++
		}
	}
	frequent := make(map[string]float64)
	var level [][]string
	for item, count := range counts {
		if count >= minCount {
			frequent[item] = count
			level = append(level, []string{item})
		}
	}

	for size := 2; size <= maxItemsetSize && len(level) > 1; size++ {
		candidates := candidateJoins(level)
		next := make([][]string, 0)
		for _, candidate := range candidates {
			count := 0.0
			for _, basket := range baskets {
				if containsAll(basket, candidate) {
					count++
				}
			}
			if count >= minCount {
				frequent[itemsetKey(candidate)] = count
				next = append(next, candidate)
			}
		}
		level = next
	}
	return frequent
}

func candidateJoins(level [][]string) [][]string {
	seen := make(map[string]struct{})
	var out [][]string
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			merged := mergeSets(level[i], level[j])
			if merged == nil || len(merged) != len(level[i])+1 {
				continue
			}
			key := itemsetKey(merged)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, merged)
		}
	}
	return out
}

func mergeSets(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	merged := make([]string, 0, len(set))
	for s := range set {
		merged = append(merged, s)
	}
	sort.Strings(merged)
	return merged
}

func containsAll(basket map[string]struct{}, items []string) bool {
	for _, item := range items {
		if _, ok := basket[item]; !ok {
			return false
		}
	}
	return true
}

func itemsetKey(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}

type split struct {
	antecedent []string
	consequent []string
}

// subsetSplits enumerates every non-empty proper antecedent subset of the
// itemset with the remainder as consequent.
func subsetSplits(items []string) []split {
	n := len(items)
	var out []split
	for mask := 1; mask < (1<<n)-1; mask++ {
		var ant, con []string
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				ant = append(ant, items[i])
			} else {
				con = append(con, items[i])
			}
		}
		out = append(out, split{antecedent: ant, consequent: con})
	}
	return out
}
