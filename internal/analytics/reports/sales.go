package reports

import (
	"fmt"
	"sort"

	"github.com/retail-lens/backend/internal/dataset"
)

type RevenueRecord struct {
	YearMonth      string  `json:"year_month"`
	Revenue        float64 `json:"revenue"`
	YoYChange      float64 `json:"yoy_change"`
	Recommendation string  `json:"recommendation"`
}

func monthlyRevenueTotals(table *dataset.Table) (map[string]float64, []string) {
	totals := make(map[string]float64)
	for _, row := range table.Rows {
		totals[row.InvoiceDate.Format("2006-01")] += row.TotalPrice
	}
	return totals, sortedKeys(totals)
}

// MonthlyRevenue buckets revenue by calendar month with a twelve-month
// year-over-year change.
func MonthlyRevenue(table *dataset.Table) []RevenueRecord {
	totals, months := monthlyRevenueTotals(table)

	records := make([]RevenueRecord, len(months))
	for i, m := range months {
		change := 0.0
		if i >= 12 && totals[months[i-12]] != 0 {
			prev := totals[months[i-12]]
			change = (totals[m] - prev) / prev
		}
		rec := "Stable; maintain strategy."
		if change < -0.1 {
			rec = "Investigate decline; consider promotions."
		} else if change > 0.1 {
			rec = "Monitor growth; optimize marketing."
		}
		records[i] = RevenueRecord{
			YearMonth:      m,
			Revenue:        totals[m],
			YoYChange:      change,
			Recommendation: rec,
		}
	}
	return records
}

// DailyRevenue returns, per calendar month, revenue keyed by day of month.
func DailyRevenue(table *dataset.Table) map[string]map[int]float64 {
	out := make(map[string]map[int]float64)
	for _, row := range table.Rows {
		month := row.InvoiceDate.Format("2006-01")
		days, ok := out[month]
		if !ok {
			days = make(map[int]float64)
			out[month] = days
		}
		days[row.InvoiceDate.Day()] += row.TotalPrice
	}
	return out
}

type SeasonalityRecord struct {
	Month          int     `json:"month"`
	Revenue        float64 `json:"revenue"`
	Recommendation string  `json:"recommendation"`
}

// Seasonality sums revenue by calendar month (January = 1) across years.
func Seasonality(table *dataset.Table) []SeasonalityRecord {
	totals := make(map[int]float64)
	for _, row := range table.Rows {
		totals[int(row.InvoiceDate.Month())] += row.TotalPrice
	}

	months := make([]int, 0, len(totals))
	values := make([]float64, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Ints(months)
	for _, m := range months {
		values = append(values, totals[m])
	}

	upper := quantile(values, 0.75)
	lower := quantile(values, 0.25)
	records := make([]SeasonalityRecord, len(months))
	for i, m := range months {
		rec := "Stable season; maintain strategy."
		if totals[m] > upper {
			rec = "High season; increase inventory."
		} else if totals[m] < lower {
			rec = "Low season; run promotions."
		}
		records[i] = SeasonalityRecord{Month: m, Revenue: totals[m], Recommendation: rec}
	}
	return records
}

type SalesDropRecord struct {
	YearMonth       string   `json:"year_month"`
	Revenue         float64  `json:"revenue"`
	YoYChange       float64  `json:"yoy_change"`
	CustomerCount   int      `json:"customer_count"`
	AvgOrderValue   float64  `json:"avg_order_value"`
	ReturnRate      float64  `json:"return_rate"`
	Reasons         []string `json:"reasons"`
	Recommendations []string `json:"recommendations"`
}

// SalesDrops finds months whose revenue fell more than 10% year over year
// (month over month when under 13 months of history) and attributes each
// drop to customer activity, order value or returns against the dataset
// averages.
func SalesDrops(table *dataset.Table) []SalesDropRecord {
	totals, months := monthlyRevenueTotals(table)
	if len(months) == 0 {
		return []SalesDropRecord{}
	}

	lag := 12
	if len(months) < 13 {
		lag = 1
	}

	monthCustomers := make(map[string]map[string]struct{})
	monthOrders := make(map[string]map[string]float64)
	monthSales := make(map[string]float64)
	monthReturns := make(map[string]float64)
	for _, row := range table.Rows {
		month := row.InvoiceDate.Format("2006-01")
		set, ok := monthCustomers[month]
		if !ok {
			set = make(map[string]struct{})
			monthCustomers[month] = set
		}
		set[row.CustomerID] = struct{}{}

		orders, ok := monthOrders[month]
		if !ok {
			orders = make(map[string]float64)
			monthOrders[month] = orders
		}
		orders[row.InvoiceNo] += row.TotalPrice

		if row.Quantity > 0 {
			monthSales[month] += float64(row.Quantity)
		} else if row.Quantity < 0 {
			monthReturns[month] += float64(-row.Quantity)
		}
	}

	avgCustomers := 0.0
	avgOrderValue := 0.0
	for _, m := range months {
		avgCustomers += float64(len(monthCustomers[m]))
		avgOrderValue += meanOrderValue(monthOrders[m])
	}
	avgCustomers /= float64(len(months))
	avgOrderValue /= float64(len(months))

	var drops []SalesDropRecord
	for i, m := range months {
		if i < lag || totals[months[i-lag]] == 0 {
			continue
		}
		prev := totals[months[i-lag]]
		change := (totals[m] - prev) / prev
		if change >= -0.1 {
			continue
		}

		customerCount := len(monthCustomers[m])
		orderValue := meanOrderValue(monthOrders[m])
		returnRate := 0.0
		if monthSales[m] > 0 {
			returnRate = monthReturns[m] / monthSales[m]
		}

		var reasons, recs []string
		if float64(customerCount) < avgCustomers*0.8 {
			reasons = append(reasons, fmt.Sprintf(
				"Customer activity dropped to %d customers vs. avg %.0f", customerCount, avgCustomers))
			recs = append(recs, "Launch customer re-engagement campaign with special offers")
		}
		if orderValue < avgOrderValue*0.8 {
			reasons = append(reasons, fmt.Sprintf(
				"Low average order value: $%.2f vs. avg $%.2f", orderValue, avgOrderValue))
			recs = append(recs, "Implement product bundling and upselling strategies")
		}
		if returnRate > 0.05 {
			reasons = append(reasons, fmt.Sprintf("High return rate: %.1f%%", returnRate*100))
			recs = append(recs, "Review product quality and listings for accuracy")
		}
		if len(reasons) == 0 {
			reasons = append(reasons, "No clear single factor identified")
			recs = append(recs, "Investigate external factors like seasonality or competition")
		}

		drops = append(drops, SalesDropRecord{
			YearMonth:       m,
			Revenue:         totals[m],
			YoYChange:       change,
			CustomerCount:   customerCount,
			AvgOrderValue:   orderValue,
			ReturnRate:      returnRate,
			Reasons:         reasons,
			Recommendations: recs,
		})
	}
	if drops == nil {
		drops = []SalesDropRecord{}
	}
	return drops
}

func meanOrderValue(orders map[string]float64) float64 {
	if len(orders) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range orders {
		sum += v
	}
	return sum / float64(len(orders))
}
