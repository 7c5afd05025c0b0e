package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is a multinomial (softmax) classifier with an L2 penalty of
// strength 1/C, fitted with L-BFGS.
type LogisticRegression struct {
	BaseModel
	C       float64
	MaxIter int
	// Weights has one row per class, Bias one entry per class.
	Weights [][]float64
	Bias    []float64
}

func NewLogisticRegression(c float64, maxIter int) *LogisticRegression {
	if c <= 0 {
		c = 1.0
	}
	if maxIter <= 0 {
		maxIter = 100
	}

	return &LogisticRegression{
		C:       c,
		MaxIter: maxIter,
		BaseModel: BaseModel{
			Name: "LogisticRegression",
			Params: map[string]any{
				"c":        c,
				"max_iter": maxIter,
			},
		},
	}
}

func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	lr.Classes = ExtractClasses(y)
	nClasses := len(lr.Classes)
	nFeatures := len(X[0])

	lr.Weights = make([][]float64, nClasses)
	for k := range lr.Weights {
		lr.Weights[k] = make([]float64, nFeatures)
	}
	lr.Bias = make([]float64, nClasses)

	if nClasses == 1 {
		return nil
	}

	lookup := classIndex(lr.Classes)
	encoded := make([]int, len(y))
	for i, label := range y {
		encoded[i] = lookup[label]
	}

	stride := nFeatures + 1
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			return lr.loss(params, X, encoded, nClasses, stride, nil)
		},
		Grad: func(grad, params []float64) {
			lr.loss(params, X, encoded, nClasses, stride, grad)
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   lr.MaxIter,
		GradientThreshold: 1e-6,
	}

	result, err := optimize.Minimize(problem, make([]float64, nClasses*stride), settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("logistic regression optimization failed: %w", err)
	}

	for k := 0; k < nClasses; k++ {
		copy(lr.Weights[k], result.X[k*stride:k*stride+nFeatures])
		lr.Bias[k] = result.X[k*stride+nFeatures]
	}

	return nil
}

// loss is the penalised negative log-likelihood; grad is filled when non-nil.
func (lr *LogisticRegression) loss(params []float64, X [][]float64, y []int, nClasses, stride int, grad []float64) float64 {
	nFeatures := stride - 1
	if grad != nil {
		for i := range grad {
			grad[i] = 0
		}
	}

	scores := make([]float64, nClasses)
	total := 0.0

	for i, row := range X {
		for k := 0; k < nClasses; k++ {
			w := params[k*stride : k*stride+nFeatures]
			scores[k] = floats.Dot(w, row) + params[k*stride+nFeatures]
		}
		lse := floats.LogSumExp(scores)
		total += lse - scores[y[i]]

		if grad == nil {
			continue
		}
		for k := 0; k < nClasses; k++ {
			delta := math.Exp(scores[k] - lse)
			if k == y[i] {
				delta--
			}
			floats.AddScaled(grad[k*stride:k*stride+nFeatures], delta, row)
			grad[k*stride+nFeatures] += delta
		}
	}

	penalty := 0.0
	for k := 0; k < nClasses; k++ {
		w := params[k*stride : k*stride+nFeatures]
		penalty += floats.Dot(w, w)
		if grad != nil {
			floats.AddScaled(grad[k*stride:k*stride+nFeatures], 1/lr.C, w)
		}
	}

	return total + penalty/(2*lr.C)
}

func (lr *LogisticRegression) PredictProba(X [][]float64) [][]float64 {
	proba := make([][]float64, len(X))
	for i, row := range X {
		scores := lr.decision(row)
		lse := floats.LogSumExp(scores)
		for k := range scores {
			scores[k] = math.Exp(scores[k] - lse)
		}
		proba[i] = scores
	}
	return proba
}

func (lr *LogisticRegression) Predict(X [][]float64) []int {
	predictions := make([]int, len(X))
	for i, row := range X {
		predictions[i] = lr.Classes[floats.MaxIdx(lr.decision(row))]
	}
	return predictions
}

func (lr *LogisticRegression) decision(row []float64) []float64 {
	scores := make([]float64, len(lr.Classes))
	for k := range scores {
		scores[k] = floats.Dot(lr.Weights[k], row) + lr.Bias[k]
	}
	return scores
}
