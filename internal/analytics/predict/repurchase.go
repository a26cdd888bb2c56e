package predict

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/retail-lens/backend/internal/analytics/rfm"
	"github.com/retail-lens/backend/internal/dataset"
	"github.com/retail-lens/backend/pkg/logger"
)

type RepurchasePrediction struct {
	CustomerID            string  `json:"customer_id"`
	RepurchaseProbability float64 `json:"repurchase_probability"`
	Recommendation        string  `json:"recommendation"`
}

type RepurchaseResult struct {
	Evaluation
	Predictions []RepurchasePrediction `json:"repurchase_predictions"`
}

// Repurchase labels customers who bought within the trailing window of the
// table and trains on plain RFM features. When the window contains no
// purchases at all, labels fall back to a seeded synthetic draw so the
// routine still produces a (clearly degraded) model.
func Repurchase(records []rfm.Record, table *dataset.Table, windowDays int, seed int64) (*RepurchaseResult, error) {
	if len(records) < minTrainingCustomers {
		return nil, &dataset.InsufficientDataError{
			Reason: fmt.Sprintf("need at least %d customers to train, have %d",
				minTrainingCustomers, len(records)),
		}
	}

	maxDate, _ := table.MaxInvoiceDate()
	cutoff := maxDate.AddDate(0, 0, -windowDays)

	recent := make(map[string]struct{})
	for _, row := range table.Rows {
		if row.InvoiceDate.After(cutoff) {
			recent[row.CustomerID] = struct{}{}
		}
	}

	features := make([][]float64, len(records))
	labels := make([]int, len(records))
	positives := 0
	for i, r := range records {
		features[i] = []float64{float64(r.Recency), float64(r.Frequency), r.Monetary}
		if _, ok := recent[r.CustomerID]; ok {
			labels[i] = 1
			positives++
		}
	}

	if positives == 0 {
		logger.Warn("no purchases inside repurchase window, using synthetic labels",
			zap.Int("window_days", windowDays))
		rng := rand.New(rand.NewSource(seed))
		for i := range labels {
			if rng.Float64() < 0.3 {
				labels[i] = 1
			}
		}
	}

	result := &RepurchaseResult{Predictions: make([]RepurchasePrediction, len(records))}
	probs, eval := trainAndScore(features, labels)
	result.Evaluation = eval

	for i, r := range records {
		p := probs[i]
		rec := fmt.Sprintf("Low likelihood (%.2f); re-engage with discount.", p)
		if p > 0.7 {
			rec = fmt.Sprintf("High repurchase likelihood (%.2f); upsell products.", p)
		} else if p > 0.3 {
			rec = fmt.Sprintf("Moderate likelihood (%.2f); send promotional email.", p)
		}
		result.Predictions[i] = RepurchasePrediction{
			CustomerID:            r.CustomerID,
			RepurchaseProbability: p,
			Recommendation:        rec,
		}
	}
	return result, nil
}
