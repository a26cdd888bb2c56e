package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-lens/backend/internal/dataset"
)

func tx(customer string, date time.Time) dataset.Transaction {
	return dataset.Transaction{CustomerID: customer, InvoiceDate: date, InvoiceNo: "INV", TotalPrice: 10}
}

func TestComputeEmptyTable(t *testing.T) {
	report := Compute(&dataset.Table{})

	assert.Empty(t, report.Cohorts)
	assert.Zero(t, report.AvgRetention)
	assert.Equal(t, insufficientDataMessage, report.Recommendation)
}

func TestComputeSingleMonth(t *testing.T) {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		tx("A", jan),
		tx("B", jan.AddDate(0, 0, 10)),
	}}

	report := Compute(table)

	require.Len(t, report.Cohorts, 1)
	assert.Equal(t, "2024-01", report.Cohorts[0].Cohort)
	assert.Equal(t, []float64{1}, report.Cohorts[0].Rates)
	assert.Equal(t, insufficientDataMessage, report.Recommendation)
}

func TestComputeAcquisitionMonthIsAlwaysOne(t *testing.T) {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		tx("A", jan), tx("B", jan), tx("C", jan),
		tx("A", feb),
		tx("D", feb),
	}}

	report := Compute(table)

	require.Len(t, report.Cohorts, 2)
	for _, row := range report.Cohorts {
		assert.Equal(t, 1.0, row.Rates[0], row.Cohort)
	}
}

func TestComputeYearBoundary(t *testing.T) {
	dec := time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		tx("A", dec), tx("B", dec),
		tx("A", jan),
		tx("C", jan),
	}}

	report := Compute(table)

	require.Len(t, report.Cohorts, 2)

	decRow := report.Cohorts[0]
	assert.Equal(t, "2023-12", decRow.Cohort)
	require.Len(t, decRow.Rates, 2)
	assert.Equal(t, 1.0, decRow.Rates[0])
	assert.Equal(t, 0.5, decRow.Rates[1])

	janRow := report.Cohorts[1]
	assert.Equal(t, "2024-01", janRow.Cohort)
	assert.Equal(t, []float64{1, 0}, janRow.Rates)

	// Column mean over offset 1: (0.5 + 0) / 2.
	assert.InDelta(t, 0.25, report.AvgRetention, 1e-9)
	assert.Contains(t, report.Recommendation, "Low retention rate of 25.0%")
}

func TestComputeRecommendationTiers(t *testing.T) {
	assert.Contains(t, recommendation(0.2), "Low retention")
	assert.Contains(t, recommendation(0.45), "Moderate retention")
	assert.Contains(t, recommendation(0.8), "High retention")
}

func TestComputeCohortAssignmentUsesEarliestInvoice(t *testing.T) {
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		tx("A", mar),
		tx("A", jan),
	}}

	report := Compute(table)

	require.NotEmpty(t, report.Cohorts)
	assert.Equal(t, "2024-01", report.Cohorts[0].Cohort)
	assert.Equal(t, []float64{1, 0, 1}, report.Cohorts[0].Rates)
}
