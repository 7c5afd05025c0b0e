package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LinearSVM is a binary L2-regularized squared-hinge SVM. Positive is the label treated
// as +1; every other label is -1. Probabilities come from a Platt sigmoid fitted on the
// training decision values.
type LinearSVM struct {
	C        float64
	MaxIter  int
	Positive int
	W        []float64
	B        float64
	PlattA   float64
	PlattB   float64
}

func NewLinearSVM(c float64, maxIter, positive int) *LinearSVM {
	return &LinearSVM{C: c, MaxIter: maxIter, Positive: positive}
}

func (s *LinearSVM) Fit(X [][]float64, y []int) error {
	nFeatures := len(X[0])
	signs := make([]float64, len(y))
	for i, label := range y {
		if label == s.Positive {
			signs[i] = 1
		} else {
			signs[i] = -1
		}
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			return s.hingeLoss(params, X, signs, nil)
		},
		Grad: func(grad, params []float64) {
			s.hingeLoss(params, X, signs, grad)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   s.MaxIter,
		GradientThreshold: 1e-6,
	}

	result, err := optimize.Minimize(problem, make([]float64, nFeatures+1), settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("svm optimization failed: %w", err)
	}
	s.W = append([]float64(nil), result.X[:nFeatures]...)
	s.B = result.X[nFeatures]

	decisions := make([]float64, len(X))
	for i, row := range X {
		decisions[i] = s.Decision(row)
	}
	return s.fitPlatt(decisions, signs)
}

func (s *LinearSVM) hingeLoss(params []float64, X [][]float64, signs []float64, grad []float64) float64 {
	nFeatures := len(params) - 1
	w := params[:nFeatures]
	b := params[nFeatures]

	if grad != nil {
		copy(grad[:nFeatures], w)
		grad[nFeatures] = 0
	}

	loss := 0.5 * floats.Dot(w, w)
	for i, row := range X {
		margin := 1 - signs[i]*(floats.Dot(w, row)+b)
		if margin <= 0 {
			continue
		}
		loss += s.C * margin * margin
		if grad != nil {
			scale := -2 * s.C * margin * signs[i]
			floats.AddScaled(grad[:nFeatures], scale, row)
			grad[nFeatures] += scale
		}
	}
	return loss
}

// fitPlatt minimizes the cross-entropy of 1/(1+exp(A*f+B)) against Platt's smoothed targets.
func (s *LinearSVM) fitPlatt(decisions, signs []float64) error {
	nPos, nNeg := 0.0, 0.0
	for _, sign := range signs {
		if sign > 0 {
			nPos++
		} else {
			nNeg++
		}
	}

	hiTarget := (nPos + 1) / (nPos + 2)
	loTarget := 1 / (nNeg + 2)
	targets := make([]float64, len(signs))
	for i, sign := range signs {
		if sign > 0 {
			targets[i] = hiTarget
		} else {
			targets[i] = loTarget
		}
	}

	eval := func(params, grad []float64) float64 {
		if grad != nil {
			grad[0], grad[1] = 0, 0
		}
		loss := 0.0
		for i, f := range decisions {
			z := params[0]*f + params[1]
			// log p = -softplus(z), log(1-p) = -softplus(-z)
			loss += targets[i]*softplus(z) + (1-targets[i])*softplus(-z)
			if grad != nil {
				diff := targets[i] - 1/(1+math.Exp(z))
				grad[0] += diff * f
				grad[1] += diff
			}
		}
		return loss
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 { return eval(params, nil) },
		Grad: func(grad, params []float64) { eval(params, grad) },
	}
	init := []float64{0, math.Log((nNeg + 1) / (nPos + 1))}

	result, err := optimize.Minimize(problem, init, &optimize.Settings{MajorIterations: 100}, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("platt scaling failed: %w", err)
	}
	s.PlattA, s.PlattB = result.X[0], result.X[1]
	return nil
}

func (s *LinearSVM) Decision(row []float64) float64 {
	return floats.Dot(s.W, row) + s.B
}

func (s *LinearSVM) Probability(row []float64) float64 {
	return 1 / (1 + math.Exp(s.PlattA*s.Decision(row)+s.PlattB))
}

func softplus(z float64) float64 {
	return math.Max(z, 0) + math.Log1p(math.Exp(-math.Abs(z)))
}

// OneVsRestSVM trains one LinearSVM per class. Predict takes the largest decision value;
// PredictProba normalizes the per-class Platt probabilities.
type OneVsRestSVM struct {
	BaseModel
	C          float64
	MaxIter    int
	Estimators []*LinearSVM
}

func NewOneVsRestSVM(c float64, maxIter int) *OneVsRestSVM {
	if c <= 0 {
		c = 1.0
	}
	if maxIter <= 0 {
		maxIter = 1000
	}

	return &OneVsRestSVM{
		C:       c,
		MaxIter: maxIter,
		BaseModel: BaseModel{
			Name: "LinearSVM",
			Params: map[string]any{
				"c":        c,
				"max_iter": maxIter,
				"kernel":   "linear",
			},
		},
	}
}

func (ovr *OneVsRestSVM) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	ovr.Classes = ExtractClasses(y)
	ovr.Estimators = nil
	if len(ovr.Classes) == 1 {
		return nil
	}

	ovr.Estimators = make([]*LinearSVM, len(ovr.Classes))
	for k, class := range ovr.Classes {
		est := NewLinearSVM(ovr.C, ovr.MaxIter, class)
		if err := est.Fit(X, y); err != nil {
			return fmt.Errorf("class %d: %w", class, err)
		}
		ovr.Estimators[k] = est
	}
	return nil
}

func (ovr *OneVsRestSVM) Predict(X [][]float64) []int {
	predictions := make([]int, len(X))
	if len(ovr.Estimators) == 0 {
		for i := range predictions {
			predictions[i] = ovr.Classes[0]
		}
		return predictions
	}

	decisions := make([]float64, len(ovr.Estimators))
	for i, row := range X {
		for k, est := range ovr.Estimators {
			decisions[k] = est.Decision(row)
		}
		predictions[i] = ovr.Classes[floats.MaxIdx(decisions)]
	}
	return predictions
}

func (ovr *OneVsRestSVM) PredictProba(X [][]float64) [][]float64 {
	proba := make([][]float64, len(X))
	for i, row := range X {
		if len(ovr.Estimators) == 0 {
			proba[i] = []float64{1}
			continue
		}

		p := make([]float64, len(ovr.Estimators))
		for k, est := range ovr.Estimators {
			p[k] = est.Probability(row)
		}
		if sum := floats.Sum(p); sum > 0 {
			floats.Scale(1/sum, p)
		} else {
			for k := range p {
				p[k] = 1 / float64(len(p))
			}
		}
		proba[i] = p
	}
	return proba
}
