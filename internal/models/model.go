package models

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNotFitted    = errors.New("model is not fitted")
	ErrInvalidInput = errors.New("invalid training input")
)

// Model is the capability every variant has: fit on labelled rows, predict labels.
type Model interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	GetName() string
	GetParams() map[string]any
}

// ProbabilisticModel adds class probabilities. Columns of PredictProba follow GetClasses.
type ProbabilisticModel interface {
	Model
	PredictProba(X [][]float64) [][]float64
	GetClasses() []int
}

// FeatureImporter is implemented by models that expose impurity-based importances.
type FeatureImporter interface {
	FeatureImportances() []float64
}

type BaseModel struct {
	Name    string
	Params  map[string]any
	Classes []int
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func (bm *BaseModel) GetClasses() []int {
	return bm.Classes
}

// ExtractClasses returns the distinct labels of y in ascending order.
func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}

func classIndex(classes []int) map[int]int {
	idx := make(map[int]int, len(classes))
	for i, class := range classes {
		idx[class] = i
	}
	return idx
}

func validateTrainingSet(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: empty feature matrix", ErrInvalidInput)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", ErrInvalidInput, len(X), len(y))
	}
	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("%w: rows have no features", ErrInvalidInput)
	}
	for i, row := range X {
		if len(row) != nFeatures {
			return fmt.Errorf("%w: row %d has %d features, expected %d", ErrInvalidInput, i, len(row), nFeatures)
		}
	}
	return nil
}
