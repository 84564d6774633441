package calculator

import (
	"fmt"
	"math"
)

// LogisticModel is a plain logistic regression. The weights plus intercept
// are the entire serialized parameter set of a model artifact.
type LogisticModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

func sigmoid(x float64) float64 {
	if x < -50 {
		return 0
	}
	if x > 50 {
		return 1
	}
	return 1 / (1 + math.Exp(-x))
}

// FitLogistic runs full-batch gradient descent. Deterministic: same rows in
// the same order produce the same weights.
func FitLogistic(x [][]float64, y []int, steps int, learningRate float64) (*LogisticModel, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("cannot fit logistic model with 0 rows")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("row/label mismatch: %d vs %d", len(x), len(y))
	}

	nFeatures := len(x[0])
	weights := make([]float64, nFeatures)
	intercept := 0.0
	m := float64(len(x))

	for step := 0; step < steps; step++ {
		grad := make([]float64, nFeatures)
		gradIntercept := 0.0
		for i, row := range x {
			z := intercept
			for j := 0; j < nFeatures; j++ {
				z += weights[j] * row[j]
			}
			diff := sigmoid(z) - float64(y[i])
			for j := 0; j < nFeatures; j++ {
				grad[j] += diff * row[j]
			}
			gradIntercept += diff
		}
		for j := 0; j < nFeatures; j++ {
			weights[j] -= learningRate * grad[j] / m
		}
		intercept -= learningRate * gradIntercept / m
	}

	return &LogisticModel{Weights: weights, Intercept: intercept}, nil
}

func (m *LogisticModel) Predict(row []float64) (float64, error) {
	if len(row) != len(m.Weights) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Weights), len(row))
	}
	z := m.Intercept
	for j, w := range m.Weights {
		z += w * row[j]
	}
	return sigmoid(z), nil
}

func LogLoss(yTrue []int, yProb []float64) float64 {
	const eps = 1e-12
	total := 0.0
	for i, y := range yTrue {
		p := math.Min(math.Max(yProb[i], eps), 1-eps)
		total += -(float64(y)*math.Log(p) + float64(1-y)*math.Log(1-p))
	}
	if len(yTrue) == 0 {
		return 0
	}
	return total / float64(len(yTrue))
}

// RocAuc is the pairwise win probability of positives over negatives. Errors
// when the labels are single-class since AUC is undefined there.
func RocAuc(yTrue []int, yProb []float64) (float64, error) {
	pos := []float64{}
	neg := []float64{}
	for i, y := range yTrue {
		if y == 1 {
			pos = append(pos, yProb[i])
		} else {
			neg = append(neg, yProb[i])
		}
	}
	if len(pos) == 0 || len(neg) == 0 {
		return 0, fmt.Errorf("roc auc undefined for single-class labels")
	}

	wins := 0.0
	ties := 0.0
	for _, p := range pos {
		for _, n := range neg {
			if p > n {
				wins++
			} else if p == n {
				ties++
			}
		}
	}
	return (wins + 0.5*ties) / float64(len(pos)*len(neg)), nil
}
