package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomForestSeparatesBlobs(t *testing.T) {
	X, y := blobs(30, 4, []int{0, 1, 2}, 1)

	rf := NewRandomForest(15, 0, 2, 3, 7)
	require.NoError(t, rf.Fit(X, y))

	assert.Equal(t, []int{0, 1, 2}, rf.GetClasses())
	assert.Len(t, rf.Trees, 15)
	assert.GreaterOrEqual(t, accuracy(y, rf.Predict(X)), 0.95)
}

func TestRandomForestProbabilitiesSumToOne(t *testing.T) {
	X, y := blobs(20, 3, []int{0, 1, 2}, 2)

	rf := NewRandomForest(10, 0, 2, 2, 3)
	require.NoError(t, rf.Fit(X, y))

	for _, row := range rf.PredictProba(X) {
		require.Len(t, row, 3)
		sum := 0.0
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestRandomForestImportancesFavourInformativeFeature(t *testing.T) {
	X, y := blobs(40, 5, []int{0, 1}, 3)
	// Only features 0 and 1 carry the class signal.
	rf := NewRandomForest(20, 0, 2, 4, 11)
	require.NoError(t, rf.Fit(X, y))

	importances := rf.FeatureImportances()
	require.Len(t, importances, 5)

	total := 0.0
	for _, v := range importances {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, importances[0]+importances[1], importances[2]+importances[3]+importances[4])
}

func TestRandomForestSameSeedSameForest(t *testing.T) {
	X, y := blobs(15, 3, []int{0, 1, 2}, 4)

	a := NewRandomForest(8, 0, 2, 4, 99)
	b := NewRandomForest(8, 0, 2, 1, 99)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	assert.Equal(t, a.PredictProba(X), b.PredictProba(X))
}

func TestRandomForestRejectsRaggedInput(t *testing.T) {
	rf := NewRandomForest(3, 0, 2, 1, 1)
	err := rf.Fit([][]float64{{1, 2}, {3}}, []int{0, 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecisionTreeFitsPureLeaves(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {10}, {11}, {12}}
	y := []int{5, 5, 5, 9, 9, 9}

	dt := NewDecisionTree(0, 2, 1)
	require.NoError(t, dt.Fit(X, y))

	assert.Equal(t, y, dt.Predict(X))
	assert.Equal(t, [][]float64{{1, 0}}, dt.PredictProba([][]float64{{0.5}}))
	assert.InDelta(t, 6.0, dt.Root.Threshold, 1e-9)
	assert.Equal(t, []float64{1}, dt.FeatureImportances())
}
