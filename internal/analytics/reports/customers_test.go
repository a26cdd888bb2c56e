package reports

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-lens/backend/internal/dataset"
)

func TestCustomerLifetimeValueFormula(t *testing.T) {
	jan := day(2024, time.January, 10)
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("C1", "INV1", "MUG", 1, 50, jan, "France"),
		row("C1", "INV2", "MUG", 1, 50, jan.AddDate(0, 1, 0), "France"),
	}}

	records := CustomerLifetimeValue(table)

	require.Len(t, records, 1)
	// avg purchase 50, frequency 2/year, retention 2/10, churn 0.8.
	assert.InDelta(t, 50*2*0.2/0.8, records[0].CLV, 1e-9)
	assert.Equal(t, "Low CLV; minimize marketing spend.", records[0].Recommendation)
}

func TestCustomerLifetimeValueRetentionCap(t *testing.T) {
	jan := day(2024, time.January, 1)
	table := &dataset.Table{}
	for i := 0; i < 20; i++ {
		table.Rows = append(table.Rows,
			row("C1", fmt.Sprintf("INV%d", i), "MUG", 1, 10, jan.AddDate(0, 0, i), "France"))
	}

	records := CustomerLifetimeValue(table)

	require.Len(t, records, 1)
	// Retention saturates at 0.9, so churn bottoms out at 0.1.
	assert.InDelta(t, 10*20*0.9/0.1, records[0].CLV, 1e-9)
}

func TestCustomerLifetimeValueRecommendationExtremes(t *testing.T) {
	jan := day(2024, time.January, 1)
	table := &dataset.Table{}
	for i, total := range []float64{10, 40, 70, 1000} {
		id := fmt.Sprintf("C%d", i)
		table.Rows = append(table.Rows,
			row(id, "INV-"+id, "MUG", 1, total, jan, "France"))
	}

	records := CustomerLifetimeValue(table)
	require.Len(t, records, 4)

	byID := make(map[string]CLVRecord, len(records))
	for _, r := range records {
		byID[r.CustomerID] = r
	}
	assert.Equal(t, "Focus on retention with loyalty program.", byID["C3"].Recommendation)
	assert.Equal(t, "Low CLV; minimize marketing spend.", byID["C0"].Recommendation)
}

func TestCustomerLifetimeValueEmptyTable(t *testing.T) {
	assert.Empty(t, CustomerLifetimeValue(&dataset.Table{}))
}

func TestTopCustomers(t *testing.T) {
	jan := day(2024, time.January, 1)
	table := &dataset.Table{}
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("C%02d", i)
		table.Rows = append(table.Rows,
			row(id, "INV-"+id, "MUG", 1, float64(10*(i+1)), jan, "France"))
	}

	entries := TopCustomers(table)

	require.Len(t, entries, 10)
	assert.Equal(t, "C11", entries[0].Name)
	assert.Equal(t, 120.0, entries[0].TotalPrice)
	assert.Equal(t, "C02", entries[9].Name)
	for _, e := range entries {
		assert.Equal(t, "Enroll in VIP program.", e.Recommendation)
	}
}

func TestTopProducts(t *testing.T) {
	jan := day(2024, time.January, 1)
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("C1", "INV1", "MUG", 2, 10, jan, "France"),
		row("C2", "INV2", "MUG", 1, 10, jan, "France"),
		row("C3", "INV3", "LAMP", 1, 25, jan, "France"),
	}}

	entries := TopProducts(table)

	require.Len(t, entries, 2)
	assert.Equal(t, "MUG", entries[0].Name)
	assert.Equal(t, 30.0, entries[0].TotalPrice)
	assert.Equal(t, "LAMP", entries[1].Name)
}

func TestMonthlyAcquisitionCountsFirstPurchaseOnly(t *testing.T) {
	jan := day(2024, time.January, 5)
	feb := day(2024, time.February, 5)
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 10, jan, "France"),
		row("B", "INV2", "MUG", 1, 10, jan, "France"),
		row("A", "INV3", "MUG", 1, 10, feb, "France"),
		row("C", "INV4", "MUG", 1, 10, feb, "France"),
	}}

	records := MonthlyAcquisition(table)

	require.Len(t, records, 2)
	assert.Equal(t, "2024-01", records[0].YearMonth)
	assert.Equal(t, 2, records[0].NewCustomers)
	assert.Equal(t, "2024-02", records[1].YearMonth)
	assert.Equal(t, 1, records[1].NewCustomers)
}

func TestMonthlyAcquisitionYoY(t *testing.T) {
	table := &dataset.Table{}
	start := day(2023, time.January, 1)
	for i := 0; i < 13; i++ {
		month := start.AddDate(0, i, 0)
		perMonth := 4
		if i == 12 {
			perMonth = 2
		}
		for j := 0; j < perMonth; j++ {
			id := fmt.Sprintf("C-%02d-%d", i, j)
			table.Rows = append(table.Rows, row(id, "INV-"+id, "MUG", 1, 10, month, "France"))
		}
	}

	records := MonthlyAcquisition(table)

	require.Len(t, records, 13)
	last := records[12]
	assert.Equal(t, "2024-01", last.YearMonth)
	assert.InDelta(t, -0.5, last.YoYChange, 1e-9)
	assert.Equal(t, "Increase marketing spend to boost acquisition.", last.Recommendation)
	assert.Zero(t, records[5].YoYChange)
}

func TestGeographyAggregates(t *testing.T) {
	jan := day(2024, time.January, 1)
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 100, jan, "France"),
		row("B", "INV2", "MUG", 1, 50, jan, "France"),
		row("C", "INV3", "MUG", 1, 30, jan, "Germany"),
	}}

	records := Geography(table, false)

	require.Len(t, records, 2)
	assert.Equal(t, "France", records[0].Country)
	assert.Equal(t, 150.0, records[0].RawRevenue)
	assert.Equal(t, 2, records[0].CustomerCount)
	assert.Equal(t, 75.0, records[0].RevenuePerCustomer)
	assert.Equal(t, "Germany", records[1].Country)
}

func TestGeographyScaledOmitsRawRevenue(t *testing.T) {
	jan := day(2024, time.January, 1)
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 100, jan, "France"),
	}}

	records := Geography(table, true)

	require.Len(t, records, 1)
	assert.Zero(t, records[0].RawRevenue)
	assert.Equal(t, 100.0, records[0].RevenuePerCustomer)
}

func TestActivityHeatmap(t *testing.T) {
	// 2024-01-01 was a Monday; Monday maps to weekday 0.
	monday := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tuesday := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 10, monday, "France"),
		row("B", "INV2", "MUG", 1, 10, monday, "France"),
		row("A", "INV1", "MUG", 1, 10, monday, "France"),
		row("C", "INV3", "MUG", 1, 10, tuesday, "France"),
	}}

	report := ActivityHeatmap(table)

	require.Len(t, report.Activity, 2)
	assert.Equal(t, 0, report.Activity[0].DayOfWeek)
	require.Len(t, report.Activity[0].Hours, 24)
	// Distinct invoices, not line items.
	assert.Equal(t, 2, report.Activity[0].Hours[10])
	assert.Equal(t, 1, report.Activity[1].Hours[15])

	assert.Equal(t, 10, report.PeakHour)
	assert.Equal(t, 0, report.PeakDay)
	assert.Equal(t, "Monday", report.PeakDayName)
	assert.Contains(t, report.Recommendation, "Monday")
	assert.Contains(t, report.Recommendation, "Hour 10")
}

func TestActivityHeatmapSundayMapsToSix(t *testing.T) {
	sunday := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 10, sunday, "France"),
	}}

	report := ActivityHeatmap(table)

	require.Len(t, report.Activity, 1)
	assert.Equal(t, 6, report.Activity[0].DayOfWeek)
	assert.Equal(t, "Sunday", report.PeakDayName)
}
