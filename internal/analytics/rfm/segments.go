package rfm

// Segment names keep their published spellings, misspellings included; the
// frontend keys on them.
const (
	SegmentHibernating        = "hibernating"
	SegmentAtRisk             = "at_Risk"
	SegmentCantLoose          = "cant_loose"
	SegmentAboutToSleep       = "about_to_Sleep"
	SegmentNeedAttention      = "need_attention"
	SegmentLoyalCustomers     = "loyal_customers"
	SegmentPromising          = "promising"
	SegmentNewCustomers       = "new_customers"
	SegmentPotentialLoyalists = "potential_loyalists"
	SegmentChampions          = "champions"
)

type segmentRule struct {
	name    string
	matches func(r, f int) bool
}

// segmentRules is evaluated top to bottom, first match wins. Only recency
// and frequency scores participate; the monetary score is a ranking signal.
var segmentRules = []segmentRule{
	{SegmentHibernating, func(r, f int) bool { return r <= 2 && f <= 2 }},
	{SegmentAtRisk, func(r, f int) bool { return r <= 2 && f >= 3 && f <= 4 }},
	{SegmentCantLoose, func(r, f int) bool { return r <= 2 && f == 5 }},
	{SegmentAboutToSleep, func(r, f int) bool { return r == 3 && f <= 2 }},
	{SegmentNeedAttention, func(r, f int) bool { return r == 3 && f == 3 }},
	{SegmentLoyalCustomers, func(r, f int) bool { return r >= 3 && r <= 4 && f >= 4 }},
	{SegmentPromising, func(r, f int) bool { return r == 4 && f == 1 }},
	{SegmentNewCustomers, func(r, f int) bool { return r == 5 && f == 1 }},
	{SegmentPotentialLoyalists, func(r, f int) bool { return r >= 4 && f >= 2 && f <= 3 }},
	{SegmentChampions, func(r, f int) bool { return r == 5 && f >= 4 }},
}

var segmentRecommendations = map[string]string{
	SegmentHibernating:        "Send re-engagement email with discount.",
	SegmentAtRisk:             "Offer loyalty discount to retain.",
	SegmentCantLoose:          "Provide exclusive offer to prevent churn.",
	SegmentAboutToSleep:       "Send reminder email with new products.",
	SegmentNeedAttention:      "Engage with personalized recommendations.",
	SegmentLoyalCustomers:     "Reward with loyalty points.",
	SegmentPromising:          "Upsell with product bundles.",
	SegmentNewCustomers:       "Welcome email with first-purchase discount.",
	SegmentPotentialLoyalists: "Encourage repeat purchase with coupon.",
	SegmentChampions:          "VIP program invitation.",
}

// Classify maps a recency/frequency score pair to a segment name. Scores
// from collapsed binning stay inside the 1-5 grid, which the rule list
// covers completely.
func Classify(recencyScore, frequencyScore int) string {
	for _, rule := range segmentRules {
		if rule.matches(recencyScore, frequencyScore) {
			return rule.name
		}
	}
	return SegmentNeedAttention
}

// Recommendation returns the fixed marketing action for a segment.
func Recommendation(segment string) string {
	return segmentRecommendations[segment]
}
