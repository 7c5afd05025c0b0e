package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateModel(t *testing.T) {
	tests := []struct {
		algorithm     string
		name          string
		probabilistic bool
	}{
		{AlgorithmForest, "RandomForest", true},
		{AlgorithmSVM, "LinearSVM", true},
		{AlgorithmLogistic, "LogisticRegression", true},
		{AlgorithmKMeans, "KMeans", false},
	}

	for _, tt := range tests {
		t.Run(tt.algorithm, func(t *testing.T) {
			config := DefaultConfig(tt.algorithm)
			config.K = 2
			model, err := CreateModel(config)
			require.NoError(t, err)
			assert.Equal(t, tt.name, model.GetName())

			_, ok := model.(ProbabilisticModel)
			assert.Equal(t, tt.probabilistic, ok)
		})
	}
}

func TestCreateModelErrors(t *testing.T) {
	_, err := CreateModel(ModelConfig{Algorithm: "knn"})
	assert.Error(t, err)

	_, err = CreateModel(ModelConfig{Algorithm: AlgorithmKMeans})
	assert.Error(t, err)
}

func TestForestImplementsFeatureImporter(t *testing.T) {
	model, err := CreateModel(DefaultConfig(AlgorithmForest))
	require.NoError(t, err)
	_, ok := model.(FeatureImporter)
	assert.True(t, ok)
}
