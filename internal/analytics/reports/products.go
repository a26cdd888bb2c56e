package reports

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/retail-lens/backend/internal/dataset"
)

type ReturnRateRecord struct {
	Description    string  `json:"description"`
	ReturnedQty    int     `json:"returned_qty"`
	ReturnRate     float64 `json:"return_rate"`
	Recommendation string  `json:"recommendation"`
}

// ProductReturnRates compares returned quantity against sold quantity per
// description, for descriptions that saw at least one return.
func ProductReturnRates(table *dataset.Table) []ReturnRateRecord {
	sold := make(map[string]int)
	returned := make(map[string]int)
	for _, row := range table.Rows {
		if row.Quantity > 0 {
			sold[row.Description] += row.Quantity
		} else if row.Quantity < 0 {
			returned[row.Description] += -row.Quantity
		}
	}

	descs := make([]string, 0, len(returned))
	for d := range returned {
		descs = append(descs, d)
	}
	sort.Strings(descs)

	records := make([]ReturnRateRecord, len(descs))
	for i, d := range descs {
		rate := 0.0
		if sold[d] > 0 {
			rate = float64(returned[d]) / float64(sold[d])
		}
		rec := "Low returns; maintain quality."
		if rate > 0.1 {
			rec = "Investigate quality issues."
		} else if rate > 0.02 {
			rec = "Monitor returns."
		}
		records[i] = ReturnRateRecord{
			Description:    d,
			ReturnedQty:    returned[d],
			ReturnRate:     rate,
			Recommendation: rec,
		}
	}
	return records
}

type TurnoverRecord struct {
	Description    string  `json:"description"`
	TurnoverRate   float64 `json:"turnover_rate"`
	Recommendation string  `json:"recommendation"`
}

// InventoryTurnover divides quantity sold by mean absolute line quantity
// per description, a proxy for stock velocity when no stock levels exist
// in the export.
func InventoryTurnover(table *dataset.Table) []TurnoverRecord {
	sold := make(map[string]int)
	absSum := make(map[string]float64)
	lines := make(map[string]int)
	for _, row := range table.Rows {
		if row.Quantity > 0 {
			sold[row.Description] += row.Quantity
		}
		qty := row.Quantity
		if qty < 0 {
			qty = -qty
		}
		absSum[row.Description] += float64(qty)
		lines[row.Description]++
	}

	descs := make([]string, 0, len(sold))
	for d := range sold {
		if lines[d] > 0 && absSum[d] > 0 {
			descs = append(descs, d)
		}
	}
	sort.Strings(descs)
	if len(descs) == 0 {
		return []TurnoverRecord{}
	}

	records := make([]TurnoverRecord, len(descs))
	rates := make([]float64, len(descs))
	for i, d := range descs {
		avgInventory := absSum[d] / float64(lines[d])
		rates[i] = float64(sold[d]) / avgInventory
		records[i] = TurnoverRecord{Description: d, TurnoverRate: rates[i]}
	}

	upper := quantile(rates, 0.75)
	lower := quantile(rates, 0.25)
	for i := range records {
		switch {
		case records[i].TurnoverRate > upper:
			records[i].Recommendation = "Increase stock due to high demand."
		case records[i].TurnoverRate < lower:
			records[i].Recommendation = "Reduce stock to avoid overstocking."
		default:
			records[i].Recommendation = "Maintain current stock levels."
		}
	}
	return records
}

type DiscountImpactRecord struct {
	Discount       float64 `json:"discount"`
	Revenue        float64 `json:"revenue"`
	Recommendation string  `json:"recommendation"`
}

var (
	discountLevels  = []float64{0, 0.05, 0.1, 0.15, 0.2}
	discountWeights = []float64{0.5, 0.2, 0.15, 0.1, 0.05}
)

// DiscountImpact simulates random discount assignment over the table and
// sums the discounted revenue by level. The RNG is seeded by the caller so
// repeated calls over the same dataset agree.
func DiscountImpact(table *dataset.Table, seed int64) []DiscountImpactRecord {
	rng := rand.New(rand.NewSource(seed))
	totals := make(map[float64]float64, len(discountLevels))
	for _, level := range discountLevels {
		totals[level] = 0
	}

	for _, row := range table.Rows {
		level := pickDiscount(rng)
		totals[level] += float64(row.Quantity) * row.UnitPrice * (1 - level)
	}

	records := make([]DiscountImpactRecord, len(discountLevels))
	for i, level := range discountLevels {
		records[i] = DiscountImpactRecord{
			Discount: level,
			Revenue:  totals[level],
			Recommendation: fmt.Sprintf(
				"Discount of %.0f%% yields %.2f; evaluate demand elasticity.",
				level*100, totals[level]),
		}
	}
	return records
}

func pickDiscount(rng *rand.Rand) float64 {
	r := rng.Float64()
	acc := 0.0
	for i, w := range discountWeights {
		acc += w
		if r < acc {
			return discountLevels[i]
		}
	}
	return discountLevels[len(discountLevels)-1]
}
