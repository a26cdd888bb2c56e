package reports

import (
	"fmt"
	"sort"

	"github.com/retail-lens/backend/internal/dataset"
)

type CLVRecord struct {
	CustomerID     string  `json:"customer_id"`
	CLV            float64 `json:"clv"`
	Recommendation string  `json:"recommendation"`
}

// CustomerLifetimeValue estimates per-customer value from average purchase
// value, yearly purchase frequency and a capped retention rate, then
// attaches quartile-thresholded recommendations.
func CustomerLifetimeValue(table *dataset.Table) []CLVRecord {
	type agg struct {
		total    float64
		rows     int
		invoices map[string]struct{}
	}

	years := make(map[int]struct{})
	aggs := make(map[string]*agg)
	for _, row := range table.Rows {
		years[row.InvoiceDate.Year()] = struct{}{}
		a, ok := aggs[row.CustomerID]
		if !ok {
			a = &agg{invoices: make(map[string]struct{})}
			aggs[row.CustomerID] = a
		}
		a.total += row.TotalPrice
		a.rows++
		a.invoices[row.InvoiceNo] = struct{}{}
	}

	yearCount := float64(len(years))
	if yearCount == 0 {
		return []CLVRecord{}
	}

	ids := make([]string, 0, len(aggs))
	for id := range aggs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]CLVRecord, 0, len(ids))
	values := make([]float64, 0, len(ids))
	for _, id := range ids {
		a := aggs[id]
		avgPurchase := a.total / float64(a.rows)
		frequency := float64(len(a.invoices)) / yearCount
		retention := float64(a.rows) / 10
		if retention > 0.9 {
			retention = 0.9
		}
		churn := 1 - retention
		clv := avgPurchase * frequency * retention / churn
		records = append(records, CLVRecord{CustomerID: id, CLV: clv})
		values = append(values, clv)
	}

	upper := quantile(values, 0.75)
	lower := quantile(values, 0.25)
	for i := range records {
		switch {
		case records[i].CLV > upper:
			records[i].Recommendation = "Focus on retention with loyalty program."
		case records[i].CLV > lower:
			records[i].Recommendation = "Engage with targeted promotions."
		default:
			records[i].Recommendation = "Low CLV; minimize marketing spend."
		}
	}
	return records
}

type RankedEntry struct {
	Name           string  `json:"name"`
	TotalPrice     float64 `json:"total_price"`
	Recommendation string  `json:"recommendation"`
}

// TopCustomers returns the ten customers with the highest summed revenue.
func TopCustomers(table *dataset.Table) []RankedEntry {
	totals := make(map[string]float64)
	for _, row := range table.Rows {
		totals[row.CustomerID] += row.TotalPrice
	}
	return ranked(totals, "Enroll in VIP program.")
}

// TopProducts returns the ten descriptions with the highest summed revenue.
func TopProducts(table *dataset.Table) []RankedEntry {
	totals := make(map[string]float64)
	for _, row := range table.Rows {
		totals[row.Description] += row.TotalPrice
	}
	return ranked(totals, "Promote heavily in marketing.")
}

func ranked(totals map[string]float64, recommendation string) []RankedEntry {
	entries := make([]RankedEntry, 0, 10)
	for _, name := range topN(totals, 10) {
		entries = append(entries, RankedEntry{
			Name:           name,
			TotalPrice:     totals[name],
			Recommendation: recommendation,
		})
	}
	return entries
}

type AcquisitionRecord struct {
	YearMonth      string  `json:"year_month"`
	NewCustomers   int     `json:"new_customers"`
	YoYChange      float64 `json:"yoy_change"`
	Recommendation string  `json:"recommendation"`
}

// MonthlyAcquisition counts first-time customers per calendar month with a
// twelve-month year-over-year change.
func MonthlyAcquisition(table *dataset.Table) []AcquisitionRecord {
	firstMonth := make(map[string]string)
	firstDate := make(map[string]int64)
	for _, row := range table.Rows {
		ts := row.InvoiceDate.Unix()
		if prev, ok := firstDate[row.CustomerID]; !ok || ts < prev {
			firstDate[row.CustomerID] = ts
			firstMonth[row.CustomerID] = row.InvoiceDate.Format("2006-01")
		}
	}

	counts := make(map[string]int)
	for _, month := range firstMonth {
		counts[month]++
	}

	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	records := make([]AcquisitionRecord, len(months))
	for i, m := range months {
		change := 0.0
		if i >= 12 {
			prev := counts[months[i-12]]
			if prev > 0 {
				change = float64(counts[m]-prev) / float64(prev)
			}
		}
		rec := "Maintain current efforts."
		if change < -0.1 {
			rec = "Increase marketing spend to boost acquisition."
		} else if change > 0.1 {
			rec = "Sustain acquisition strategies."
		}
		records[i] = AcquisitionRecord{
			YearMonth:      m,
			NewCustomers:   counts[m],
			YoYChange:      change,
			Recommendation: rec,
		}
	}
	return records
}

type GeographyRecord struct {
	Country            string  `json:"country"`
	RawRevenue         float64 `json:"raw_revenue,omitempty"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
	CustomerCount      int     `json:"customer_count"`
	Recommendation     string  `json:"recommendation"`
}

// Geography aggregates revenue and distinct customers by country. With
// scaled set, raw revenue is omitted from the output.
func Geography(table *dataset.Table, scaled bool) []GeographyRecord {
	revenue := make(map[string]float64)
	customers := make(map[string]map[string]struct{})
	for _, row := range table.Rows {
		revenue[row.Country] += row.TotalPrice
		set, ok := customers[row.Country]
		if !ok {
			set = make(map[string]struct{})
			customers[row.Country] = set
		}
		set[row.CustomerID] = struct{}{}
	}

	countries := sortedKeys(revenue)
	records := make([]GeographyRecord, len(countries))
	perCustomer := make([]float64, len(countries))
	for i, country := range countries {
		count := len(customers[country])
		rpc := 0.0
		if count > 0 {
			rpc = revenue[country] / float64(count)
		}
		records[i] = GeographyRecord{
			Country:            country,
			RevenuePerCustomer: rpc,
			CustomerCount:      count,
		}
		if !scaled {
			records[i].RawRevenue = revenue[country]
		}
		perCustomer[i] = rpc
	}

	upper := quantile(perCustomer, 0.75)
	lower := quantile(perCustomer, 0.25)
	for i := range records {
		switch {
		case records[i].RevenuePerCustomer > upper:
			records[i].Recommendation = "High-value market; expand marketing."
		case records[i].RevenuePerCustomer < lower:
			records[i].Recommendation = "Low-value market; optimize campaigns."
		default:
			records[i].Recommendation = "Stable market; maintain strategy."
		}
	}
	return records
}

type HeatmapReport struct {
	Activity       []HeatmapRow `json:"activity_heatmap"`
	PeakHour       int          `json:"peak_hour"`
	PeakDay        int          `json:"peak_day"`
	PeakDayName    string       `json:"peak_day_name"`
	Recommendation string       `json:"recommendation"`
}

type HeatmapRow struct {
	DayOfWeek int   `json:"day_of_week"`
	Hours     []int `json:"hours"`
}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ActivityHeatmap counts distinct invoices by weekday and hour. Weekday
// numbering starts at Monday = 0, which the frontend expects; all 24 hour
// columns are materialized even when empty.
func ActivityHeatmap(table *dataset.Table) HeatmapReport {
	type slot struct{ day, hour int }
	invoices := make(map[slot]map[string]struct{})
	daysSeen := make(map[int]struct{})
	for _, row := range table.Rows {
		day := (int(row.InvoiceDate.Weekday()) + 6) % 7
		s := slot{day, row.InvoiceDate.Hour()}
		daysSeen[day] = struct{}{}
		set, ok := invoices[s]
		if !ok {
			set = make(map[string]struct{})
			invoices[s] = set
		}
		set[row.InvoiceNo] = struct{}{}
	}

	days := make([]int, 0, len(daysSeen))
	for d := range daysSeen {
		days = append(days, d)
	}
	sort.Ints(days)

	hourTotals := make([]int, 24)
	dayTotals := make(map[int]int)
	rows := make([]HeatmapRow, 0, len(days))
	for _, day := range days {
		hours := make([]int, 24)
		for hour := 0; hour < 24; hour++ {
			n := len(invoices[slot{day, hour}])
			hours[hour] = n
			hourTotals[hour] += n
			dayTotals[day] += n
		}
		rows = append(rows, HeatmapRow{DayOfWeek: day, Hours: hours})
	}

	peakHour, peakDay := 0, 0
	for hour, n := range hourTotals {
		if n > hourTotals[peakHour] {
			peakHour = hour
		}
	}
	for _, day := range days {
		if dayTotals[day] > dayTotals[peakDay] {
			peakDay = day
		}
	}

	name := "Unknown"
	if peakDay >= 0 && peakDay < len(dayNames) {
		name = dayNames[peakDay]
	}

	return HeatmapReport{
		Activity:    rows,
		PeakHour:    peakHour,
		PeakDay:     peakDay,
		PeakDayName: name,
		Recommendation: fmt.Sprintf(
			"Peak activity on %s at Hour %d; schedule promotions accordingly.", name, peakHour),
	}
}
