package rfm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-lens/backend/internal/dataset"
)

func tx(customer, invoice string, date time.Time, total float64) dataset.Transaction {
	return dataset.Transaction{
		InvoiceNo:   invoice,
		CustomerID:  customer,
		InvoiceDate: date,
		TotalPrice:  total,
	}
}

func TestComputeSingleCustomer(t *testing.T) {
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		tx("C1", "INV1", day, 10),
		tx("C1", "INV1", day, 10),
		tx("C1", "INV1", day, 10),
	}}

	records, err := Compute(table)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "C1", r.CustomerID)
	assert.Equal(t, 1, r.Recency)
	assert.Equal(t, 1, r.Frequency)
	assert.Equal(t, 30.0, r.Monetary)
	assert.Equal(t, 1, r.RecencyScore)
	assert.Equal(t, 1, r.FrequencyScore)
	assert.Equal(t, 1, r.MonetaryScore)
	assert.Equal(t, SegmentHibernating, r.Segment)
	assert.Equal(t, Recommendation(SegmentHibernating), r.Recommendation)
}

func TestComputeFrequencyCountsDistinctInvoices(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		tx("C1", "INV1", day, 5),
		tx("C1", "INV2", day.AddDate(0, 0, 1), 5),
		tx("C1", "INV2", day.AddDate(0, 0, 1), 5),
	}}

	records, err := Compute(table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Frequency)
	assert.Equal(t, 1, records[0].Recency)
}

func TestComputeExcludesNonPositiveMonetary(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		tx("KEEP", "INV1", day, 50),
		tx("REFUNDED", "INV2", day, 20),
		tx("REFUNDED", "INV3", day, -20),
		tx("NEGATIVE", "INV4", day, -10),
	}}

	records, err := Compute(table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "KEEP", records[0].CustomerID)
}

func TestComputeAllNonPositiveMonetary(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{Rows: []dataset.Transaction{
		tx("C1", "INV1", day, -10),
		tx("C2", "INV2", day, 0),
	}}

	_, err := Compute(table)

	var insufficientErr *dataset.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
}

func TestComputeEmptyTable(t *testing.T) {
	_, err := Compute(&dataset.Table{})

	var insufficientErr *dataset.InsufficientDataError
	require.ErrorAs(t, err, &insufficientErr)
}

func TestComputeScoresStayInRange(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{}
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("C%02d", i)
		for j := 0; j <= i%5; j++ {
			table.Rows = append(table.Rows, tx(id,
				fmt.Sprintf("INV-%02d-%d", i, j),
				base.AddDate(0, 0, i*3+j),
				float64(5+i*7)))
		}
	}

	records, err := Compute(table)
	require.NoError(t, err)
	require.Len(t, records, 40)

	for _, r := range records {
		assert.GreaterOrEqual(t, r.RecencyScore, 1)
		assert.LessOrEqual(t, r.RecencyScore, 5)
		assert.GreaterOrEqual(t, r.FrequencyScore, 1)
		assert.LessOrEqual(t, r.FrequencyScore, 5)
		assert.GreaterOrEqual(t, r.MonetaryScore, 1)
		assert.LessOrEqual(t, r.MonetaryScore, 5)
		assert.GreaterOrEqual(t, r.Recency, 1)
		assert.NotEmpty(t, r.Segment)
		assert.NotEmpty(t, r.Recommendation)
	}
}

func TestComputeDeterministic(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table := &dataset.Table{}
	for i := 0; i < 25; i++ {
		table.Rows = append(table.Rows, tx(
			fmt.Sprintf("C%02d", i),
			fmt.Sprintf("INV%02d", i),
			base.AddDate(0, 0, i),
			float64(10+i)))
	}

	first, err := Compute(table)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Compute(table)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		recency, frequency int
		want               string
	}{
		{1, 1, SegmentHibernating},
		{2, 2, SegmentHibernating},
		{1, 3, SegmentAtRisk},
		{2, 4, SegmentAtRisk},
		{1, 5, SegmentCantLoose},
		{2, 5, SegmentCantLoose},
		{3, 1, SegmentAboutToSleep},
		{3, 2, SegmentAboutToSleep},
		{3, 3, SegmentNeedAttention},
		{3, 4, SegmentLoyalCustomers},
		{4, 5, SegmentLoyalCustomers},
		{4, 1, SegmentPromising},
		{5, 1, SegmentNewCustomers},
		{4, 2, SegmentPotentialLoyalists},
		{5, 3, SegmentPotentialLoyalists},
		{5, 4, SegmentChampions},
		{5, 5, SegmentChampions},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.recency, tt.frequency),
			"recency=%d frequency=%d", tt.recency, tt.frequency)
	}
}

func TestRecommendationCoversEverySegment(t *testing.T) {
	for _, rule := range segmentRules {
		assert.NotEmpty(t, Recommendation(rule.name), rule.name)
	}
}
