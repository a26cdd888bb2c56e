package predict

import (
	"fmt"

	"github.com/retail-lens/backend/internal/analytics/rfm"
	"github.com/retail-lens/backend/internal/dataset"
)

const minTrainingCustomers = 10

type ChurnPrediction struct {
	CustomerID       string  `json:"customer_id"`
	ChurnProbability float64 `json:"churn_probability"`
	Recommendation   string  `json:"recommendation"`
}

type ChurnResult struct {
	Evaluation
	Predictions []ChurnPrediction `json:"churn_predictions"`
}

// Churn labels customers whose last purchase is older than windowDays and
// trains a propensity model on their RFM features. Days since last
// purchase equals recency by construction (both are measured from the same
// reference date) and is kept as a fourth feature for parity with the
// published model.
func Churn(records []rfm.Record, windowDays int) (*ChurnResult, error) {
	if len(records) < minTrainingCustomers {
		return nil, &dataset.InsufficientDataError{
			Reason: fmt.Sprintf("need at least %d customers to train, have %d",
				minTrainingCustomers, len(records)),
		}
	}

	features := make([][]float64, len(records))
	labels := make([]int, len(records))
	for i, r := range records {
		features[i] = []float64{
			float64(r.Recency),
			float64(r.Frequency),
			r.Monetary,
			float64(r.Recency),
		}
		if r.Recency > windowDays {
			labels[i] = 1
		}
	}

	result := &ChurnResult{Predictions: make([]ChurnPrediction, len(records))}
	probs, eval := trainAndScore(features, labels)
	result.Evaluation = eval

	for i, r := range records {
		p := probs[i]
		rec := fmt.Sprintf("Low risk (%.2f); maintain relationship.", p)
		if p > 0.7 {
			rec = fmt.Sprintf("High churn risk (%.2f); offer discount.", p)
		} else if p > 0.3 {
			rec = fmt.Sprintf("Moderate risk (%.2f); engage with email.", p)
		}
		result.Predictions[i] = ChurnPrediction{
			CustomerID:       r.CustomerID,
			ChurnProbability: p,
			Recommendation:   rec,
		}
	}
	return result, nil
}

// trainAndScore standardizes the features, trains on a held-out split,
// evaluates on the test indices and scores every row with the trained
// model.
func trainAndScore(features [][]float64, labels []int) ([]float64, Evaluation) {
	sc := fitScaler(features)
	scaled := make([][]float64, len(features))
	for i, x := range features {
		scaled[i] = sc.transform(x)
	}

	trainIdx, testIdx := trainTestSplit(len(scaled))
	trainX := make([][]float64, len(trainIdx))
	trainY := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = scaled[idx]
		trainY[i] = labels[idx]
	}

	model := trainLogistic(trainX, trainY)

	testTrue := make([]int, len(testIdx))
	testPred := make([]int, len(testIdx))
	for i, idx := range testIdx {
		testTrue[i] = labels[idx]
		testPred[i] = model.predict(scaled[idx])
	}

	probs := make([]float64, len(scaled))
	for i, x := range scaled {
		probs[i] = model.predictProba(x)
	}
	return probs, evaluate(testTrue, testPred)
}
