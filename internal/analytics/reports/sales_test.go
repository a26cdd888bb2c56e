package reports

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-lens/backend/internal/dataset"
)

func TestMonthlyRevenue(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 2, 10, day(2024, time.January, 5), "France"),
		row("B", "INV2", "MUG", 1, 30, day(2024, time.January, 20), "France"),
		row("C", "INV3", "MUG", 1, 15, day(2024, time.February, 3), "France"),
	}}

	records := MonthlyRevenue(table)

	require.Len(t, records, 2)
	assert.Equal(t, "2024-01", records[0].YearMonth)
	assert.Equal(t, 50.0, records[0].Revenue)
	assert.Equal(t, "2024-02", records[1].YearMonth)
	assert.Equal(t, 15.0, records[1].Revenue)
	assert.Zero(t, records[0].YoYChange)
}

func TestMonthlyRevenueYoY(t *testing.T) {
	table := &dataset.Table{}
	start := day(2023, time.January, 1)
	for i := 0; i < 13; i++ {
		price := 100.0
		if i == 12 {
			price = 50.0
		}
		table.Rows = append(table.Rows,
			row("A", fmt.Sprintf("INV%d", i), "MUG", 1, price, start.AddDate(0, i, 0), "France"))
	}

	records := MonthlyRevenue(table)

	require.Len(t, records, 13)
	last := records[12]
	assert.Equal(t, "2024-01", last.YearMonth)
	assert.InDelta(t, -0.5, last.YoYChange, 1e-9)
	assert.Equal(t, "Investigate decline; consider promotions.", last.Recommendation)
	assert.Equal(t, "Stable; maintain strategy.", records[0].Recommendation)
}

func TestDailyRevenue(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 10, day(2024, time.January, 5), "France"),
		row("B", "INV2", "MUG", 1, 20, day(2024, time.January, 5), "France"),
		row("C", "INV3", "MUG", 1, 15, day(2024, time.January, 6), "France"),
		row("D", "INV4", "MUG", 1, 40, day(2024, time.February, 1), "France"),
	}}

	out := DailyRevenue(table)

	require.Len(t, out, 2)
	assert.Equal(t, 30.0, out["2024-01"][5])
	assert.Equal(t, 15.0, out["2024-01"][6])
	assert.Equal(t, 40.0, out["2024-02"][1])
}

func TestSeasonality(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 100, day(2023, time.March, 1), "France"),
		row("B", "INV2", "MUG", 1, 200, day(2023, time.June, 1), "France"),
		row("C", "INV3", "MUG", 1, 300, day(2023, time.September, 1), "France"),
		row("D", "INV4", "MUG", 1, 1000, day(2023, time.December, 1), "France"),
		row("E", "INV5", "MUG", 1, 500, day(2024, time.December, 1), "France"),
	}}

	records := Seasonality(table)

	require.Len(t, records, 4)
	assert.Equal(t, 3, records[0].Month)
	assert.Equal(t, 100.0, records[0].Revenue)

	// December sums across both years.
	dec := records[3]
	assert.Equal(t, 12, dec.Month)
	assert.Equal(t, 1500.0, dec.Revenue)
	assert.Equal(t, "High season; increase inventory.", dec.Recommendation)
}

func TestSalesDropsMonthOverMonth(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 1000, day(2024, time.January, 5), "France"),
		row("A", "INV2", "MUG", 1, 2000, day(2024, time.February, 5), "France"),
		row("A", "INV3", "MUG", 1, 500, day(2024, time.March, 5), "France"),
	}}

	drops := SalesDrops(table)

	require.Len(t, drops, 1)
	drop := drops[0]
	assert.Equal(t, "2024-03", drop.YearMonth)
	assert.Equal(t, 500.0, drop.Revenue)
	assert.InDelta(t, -0.75, drop.YoYChange, 1e-9)
	assert.Equal(t, 1, drop.CustomerCount)
	assert.NotEmpty(t, drop.Reasons)
	assert.NotEmpty(t, drop.Recommendations)
}

func TestSalesDropsAttributesLowOrderValue(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 2000, day(2024, time.January, 5), "France"),
		row("A", "INV2", "MUG", 1, 400, day(2024, time.February, 5), "France"),
	}}

	drops := SalesDrops(table)

	require.Len(t, drops, 1)
	assert.Contains(t, drops[0].Reasons[0], "Low average order value")
}

func TestSalesDropsNoDrops(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 1, 1000, day(2024, time.January, 5), "France"),
		row("A", "INV2", "MUG", 1, 1100, day(2024, time.February, 5), "France"),
	}}

	drops := SalesDrops(table)

	assert.NotNil(t, drops)
	assert.Empty(t, drops)
}

func TestSalesDropsEmptyTable(t *testing.T) {
	drops := SalesDrops(&dataset.Table{})

	assert.NotNil(t, drops)
	assert.Empty(t, drops)
}

func TestSalesDropsHighReturnRate(t *testing.T) {
	table := &dataset.Table{Rows: []dataset.Transaction{
		row("A", "INV1", "MUG", 10, 100, day(2024, time.January, 5), "France"),
		row("A", "INV2", "MUG", 10, 40, day(2024, time.February, 5), "France"),
		row("A", "INV3", "MUG", -2, 40, day(2024, time.February, 6), "France"),
	}}

	drops := SalesDrops(table)

	require.Len(t, drops, 1)
	drop := drops[0]
	assert.Greater(t, drop.ReturnRate, 0.05)

	found := false
	for _, reason := range drop.Reasons {
		if len(reason) >= 4 && reason[:4] == "High" {
			found = true
		}
	}
	assert.True(t, found, "expected a high return rate reason, got %v", drop.Reasons)
}
