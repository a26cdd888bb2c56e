package reports

import (
	"fmt"
	"sort"

	"github.com/retail-lens/backend/internal/analytics/affinity"
	"github.com/retail-lens/backend/internal/analytics/rfm"
)

type MarketingSegment struct {
	Segment        string   `json:"segment"`
	CustomerCount  int      `json:"customer_count"`
	TopCustomers   []string `json:"top_customers"`
	Recommendation string   `json:"recommendation"`
	ProductBundles []string `json:"product_bundles"`
}

// MarketingRecommendations summarizes each RFM segment with its size, its
// five highest-monetary customers and bundle suggestions drawn from the
// top association rules.
func MarketingRecommendations(records []rfm.Record, rules []affinity.Rule) []MarketingSegment {
	if len(records) == 0 {
		return []MarketingSegment{{
			Segment:        "No data",
			Recommendation: "Insufficient data for recommendations",
		}}
	}

	bundles := make([]string, 0, 3)
	for i, rule := range rules {
		if i == 3 {
			break
		}
		bundles = append(bundles, fmt.Sprintf(
			"Bundle %s with %s (Lift: %.2f)", rule.Antecedents, rule.Consequents, rule.Lift))
	}
	if len(bundles) == 0 {
		bundles = []string{"No specific bundle recommendations identified"}
	}

	// Segment order follows first appearance in the RFM result so repeated
	// calls over the same dataset agree.
	var order []string
	bySegment := make(map[string][]rfm.Record)
	for _, r := range records {
		if _, seen := bySegment[r.Segment]; !seen {
			order = append(order, r.Segment)
		}
		bySegment[r.Segment] = append(bySegment[r.Segment], r)
	}

	segments := make([]MarketingSegment, 0, len(order))
	for _, name := range order {
		members := bySegment[name]
		sorted := append([]rfm.Record(nil), members...)
		sort.SliceStable(sorted, func(a, b int) bool {
			return sorted[a].Monetary > sorted[b].Monetary
		})

		top := make([]string, 0, 5)
		for i, r := range sorted {
			if i == 5 {
				break
			}
			top = append(top, r.CustomerID)
		}

		segments = append(segments, MarketingSegment{
			Segment:        name,
			CustomerCount:  len(members),
			TopCustomers:   top,
			Recommendation: rfm.Recommendation(name),
			ProductBundles: bundles,
		})
	}
	return segments
}
