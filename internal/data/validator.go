package data

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateDataset(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
		for j, value := range sample {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return fmt.Errorf("non-finite value at sample %d, feature %d", i, j)
			}
		}
	}

	return nil
}

func (dv *DataValidator) ValidateLabels(y []int) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	if len(classCount) < 2 {
		return fmt.Errorf("dataset must have at least 2 classes, found %d", len(classCount))
	}

	return nil
}

type FeatureStats struct {
	Min  float64
	Max  float64
	Mean float64
}

type DatasetStats struct {
	Samples           int
	Features          int
	Classes           int
	ClassDistribution map[int]int
	FeatureStats      []FeatureStats
}

func (dv *DataValidator) GetDatasetStats(X [][]float64, y []int) DatasetStats {
	if len(X) == 0 {
		return DatasetStats{}
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	nFeatures := len(X[0])
	featureStats := make([]FeatureStats, nFeatures)
	column := make([]float64, len(X))
	for j := 0; j < nFeatures; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		minV, _ := stats.Min(column)
		maxV, _ := stats.Max(column)
		mean, _ := stats.Mean(column)
		featureStats[j] = FeatureStats{Min: minV, Max: maxV, Mean: mean}
	}

	return DatasetStats{
		Samples:           len(X),
		Features:          nFeatures,
		Classes:           len(classCount),
		ClassDistribution: classCount,
		FeatureStats:      featureStats,
	}
}
