// Package model implements the binary classifier used for feature
// subset evaluation and the metrics reported for it.
package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Training constants. Inputs are expected to be min-max scaled, where
// this step size converges well inside the default iteration budget.
const (
	learningRate = 0.1
	tolerance    = 1e-6
)

// LogisticRegression is a binary classifier over dense feature
// matrices. Training is deterministic: weights start at zero and
// follow full-batch gradient descent, so identical inputs always
// produce identical models.
type LogisticRegression struct {
	weights *mat.VecDense
	bias    float64
	maxIter int
}

// NewLogisticRegression returns an untrained classifier with the given
// iteration budget.
func NewLogisticRegression(maxIter int) *LogisticRegression {
	return &LogisticRegression{maxIter: maxIter}
}

// Fit trains on the design matrix x and labels y, replacing any
// previous fit. Labels must be exactly 0 or 1.
func (m *LogisticRegression) Fit(x *mat.Dense, y []float64) error {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("empty design matrix (%dx%d)", rows, cols)
	}
	if len(y) != rows {
		return fmt.Errorf("%d labels for %d rows", len(y), rows)
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("label %v at row %d is not binary", label, i)
		}
	}

	weights := mat.NewVecDense(cols, nil)
	bias := 0.0
	logits := mat.NewVecDense(rows, nil)
	resid := mat.NewVecDense(rows, nil)
	grad := mat.NewVecDense(cols, nil)
	n := float64(rows)

	for iter := 0; iter < m.maxIter; iter++ {
		logits.MulVec(x, weights)
		for i := 0; i < rows; i++ {
			resid.SetVec(i, sigmoid(logits.AtVec(i)+bias)-y[i])
		}
		grad.MulVec(x.T(), resid)
		grad.ScaleVec(1/n, grad)
		gradBias := floats.Sum(resid.RawVector().Data) / n

		weights.AddScaledVec(weights, -learningRate, grad)
		bias -= learningRate * gradBias

		if math.Max(floats.Norm(grad.RawVector().Data, math.Inf(1)), math.Abs(gradBias)) < tolerance {
			break
		}
	}

	m.weights = weights
	m.bias = bias
	return nil
}

// PredictProba returns the positive-class probability for each row of x.
func (m *LogisticRegression) PredictProba(x *mat.Dense) ([]float64, error) {
	if m.weights == nil {
		return nil, fmt.Errorf("model is not fitted")
	}
	rows, cols := x.Dims()
	if cols != m.weights.Len() {
		return nil, fmt.Errorf("%d feature columns, model was fitted with %d", cols, m.weights.Len())
	}
	if rows == 0 {
		return nil, nil
	}

	logits := mat.NewVecDense(rows, nil)
	logits.MulVec(x, m.weights)
	proba := make([]float64, rows)
	for i := range proba {
		proba[i] = sigmoid(logits.AtVec(i) + m.bias)
	}
	return proba, nil
}

// Predict returns the 0/1 label for each row of x, thresholding the
// positive-class probability at 0.5.
func (m *LogisticRegression) Predict(x *mat.Dense) ([]float64, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	labels := make([]float64, len(proba))
	for i, p := range proba {
		if p >= 0.5 {
			labels[i] = 1
		}
	}
	return labels, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
