// Package rfm segments customers by recency, frequency and monetary value.
// Every downstream customer analysis consumes its output, so scoring here
// is deliberately deterministic for a fixed input table.
package rfm

import (
	"sort"
	"time"

	"github.com/retail-lens/backend/internal/dataset"
)

// Record is one customer's RFM result.
type Record struct {
	CustomerID     string  `json:"customer_id"`
	Recency        int     `json:"recency"`
	Frequency      int     `json:"frequency"`
	Monetary       float64 `json:"monetary"`
	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	Segment        string  `json:"segment"`
	Recommendation string  `json:"recommendation"`
}

type customerAgg struct {
	lastInvoice time.Time
	invoices    map[string]struct{}
	monetary    float64
}

// Compute builds one Record per eligible customer. Customers whose summed
// TotalPrice is not positive cannot be segmented by this scheme and are
// excluded; if nobody survives the filter the whole analysis fails.
func Compute(table *dataset.Table) ([]Record, error) {
	maxDate, ok := table.MaxInvoiceDate()
	if !ok {
		return nil, &dataset.InsufficientDataError{Reason: "no transactions to segment"}
	}

	// Reference date one day past the newest invoice keeps recency >= 1
	// and avoids degenerate scoring at the boundary.
	reference := maxDate.AddDate(0, 0, 1)

	aggs := make(map[string]*customerAgg)
	for _, row := range table.Rows {
		agg, ok := aggs[row.CustomerID]
		if !ok {
			agg = &customerAgg{invoices: make(map[string]struct{})}
			aggs[row.CustomerID] = agg
		}
		if row.InvoiceDate.After(agg.lastInvoice) {
			agg.lastInvoice = row.InvoiceDate
		}
		agg.invoices[row.InvoiceNo] = struct{}{}
		agg.monetary += row.TotalPrice
	}

	// Sorted customer order makes rank-based frequency scoring (and with
	// it the whole result) independent of map iteration.
	ids := make([]string, 0, len(aggs))
	for id, agg := range aggs {
		if agg.monetary > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, &dataset.InsufficientDataError{Reason: "no customers with positive monetary value"}
	}
	sort.Strings(ids)

	records := make([]Record, len(ids))
	recencies := make([]float64, len(ids))
	frequencies := make([]float64, len(ids))
	monetaries := make([]float64, len(ids))

	for i, id := range ids {
		agg := aggs[id]
		recency := int(reference.Sub(agg.lastInvoice).Hours() / 24)
		records[i] = Record{
			CustomerID: id,
			Recency:    recency,
			Frequency:  len(agg.invoices),
			Monetary:   agg.monetary,
		}
		recencies[i] = float64(recency)
		frequencies[i] = float64(len(agg.invoices))
		monetaries[i] = agg.monetary
	}

	recencyScores := scoreInverse(recencies)
	frequencyScores := scoreDirect(rankFirst(frequencies))
	monetaryScores := scoreDirect(monetaries)

	for i := range records {
		records[i].RecencyScore = recencyScores[i]
		records[i].FrequencyScore = frequencyScores[i]
		records[i].MonetaryScore = monetaryScores[i]
		records[i].Segment = Classify(recencyScores[i], frequencyScores[i])
		records[i].Recommendation = Recommendation(records[i].Segment)
	}

	return records, nil
}
