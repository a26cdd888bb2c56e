// Package predict trains the churn and repurchase propensity models on RFM
// features. The model is a standardized logistic regression trained by
// gradient descent, which keeps results deterministic for a fixed dataset.
package predict

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	trainIterations = 500
	learningRate    = 0.1
	testFraction    = 0.2
	splitSeed       = 42
)

type scaler struct {
	means []float64
	stds  []float64
}

func fitScaler(features [][]float64) *scaler {
	cols := len(features[0])
	s := &scaler{means: make([]float64, cols), stds: make([]float64, cols)}
	col := make([]float64, len(features))
	for j := 0; j < cols; j++ {
		for i := range features {
			col[i] = features[i][j]
		}
		s.means[j] = stat.Mean(col, nil)
		s.stds[j] = stat.PopStdDev(col, nil)
		if s.stds[j] == 0 {
			s.stds[j] = 1
		}
	}
	return s
}

func (s *scaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.means[j]) / s.stds[j]
	}
	return out
}

type logisticModel struct {
	weights []float64
	bias    float64
}

func trainLogistic(features [][]float64, labels []int) *logisticModel {
	m := &logisticModel{weights: make([]float64, len(features[0]))}
	n := float64(len(features))
	grad := make([]float64, len(m.weights))

	for iter := 0; iter < trainIterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		biasGrad := 0.0
		for i, x := range features {
			err := m.predictProba(x) - float64(labels[i])
			for j, v := range x {
				grad[j] += err * v
			}
			biasGrad += err
		}
		floats.AddScaled(m.weights, -learningRate/n, grad)
		m.bias -= learningRate / n * biasGrad
	}
	return m
}

func (m *logisticModel) predictProba(x []float64) float64 {
	return sigmoid(floats.Dot(m.weights, x) + m.bias)
}

func (m *logisticModel) predict(x []float64) int {
	if m.predictProba(x) >= 0.5 {
		return 1
	}
	return 0
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func trainTestSplit(n int) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(splitSeed))
	rng.Shuffle(n, func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

	testSize := int(float64(n) * testFraction)
	if testSize < 1 {
		testSize = 1
	}
	return idx[testSize:], idx[:testSize]
}

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

type Evaluation struct {
	ConfusionMatrix [][]int                 `json:"confusion_matrix"`
	Report          map[string]ClassMetrics `json:"classification_report"`
	Accuracy        float64                 `json:"accuracy"`
}

// evaluate computes a two-class confusion matrix (rows true, columns
// predicted) and the usual per-class metrics.
func evaluate(yTrue, yPred []int) Evaluation {
	matrix := [][]int{{0, 0}, {0, 0}}
	correct := 0
	for i := range yTrue {
		matrix[yTrue[i]][yPred[i]]++
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	report := make(map[string]ClassMetrics, 2)
	for class := 0; class < 2; class++ {
		tp := matrix[class][class]
		predicted := matrix[0][class] + matrix[1][class]
		actual := matrix[class][0] + matrix[class][1]

		precision := 0.0
		if predicted > 0 {
			precision = float64(tp) / float64(predicted)
		}
		recall := 0.0
		if actual > 0 {
			recall = float64(tp) / float64(actual)
		}
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report[fmt.Sprintf("%d", class)] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   actual,
		}
	}

	accuracy := 0.0
	if len(yTrue) > 0 {
		accuracy = float64(correct) / float64(len(yTrue))
	}
	return Evaluation{ConfusionMatrix: matrix, Report: report, Accuracy: accuracy}
}
