package evaluation

import (
	"context"
	"math/rand"
	"testing"

	"github.com/mohdazh1/CMSE491-Semester-Project/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func synthetic(n, d, classes int, seed int64) ([][]float64, []int) {
	r := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		y[i] = i % classes
		X[i] = make([]float64, d)
		for j := range X[i] {
			X[i][j] = r.NormFloat64()
		}
		X[i][y[i]] += 2
	}
	return X, y
}

func TestHoldoutEvaluatorCollectsAUCs(t *testing.T) {
	X, y := synthetic(100, 10, 3, 1)
	splitter := NewTrainTestSplitter(0.25, rand.New(rand.NewSource(2)))
	evaluator := NewHoldoutEvaluator(5, 0.25, []int{0, 1, 2}, splitter, zap.NewNop())

	factories := map[string]ModelFactory{
		"forest": func(seed int64) (models.Model, error) {
			return models.NewRandomForest(10, 0, 2, 2, seed), nil
		},
		"logistic": func(seed int64) (models.Model, error) {
			return models.NewLogisticRegression(1.0, 100), nil
		},
		"svm": func(seed int64) (models.Model, error) {
			return models.NewOneVsRestSVM(1.0, 200), nil
		},
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			result, err := evaluator.Evaluate(context.Background(), X, y, factory)
			require.NoError(t, err)

			assert.Equal(t, 5, result.Trials)
			for _, class := range []int{0, 1, 2} {
				scores := result.AUC.Scores(class)
				assert.LessOrEqual(t, len(scores), 5)
				assert.NotEmpty(t, scores)
				for _, s := range scores {
					assert.GreaterOrEqual(t, s, 0.0)
					assert.LessOrEqual(t, s, 1.0)
				}
			}

			require.NotNil(t, result.FinalMetrics)
			assert.Len(t, result.FinalYTest, 25)
			assert.Len(t, result.FinalYPred, 25)
		})
	}
}

func TestHoldoutEvaluatorAveragesImportances(t *testing.T) {
	X, y := synthetic(60, 4, 2, 3)
	evaluator := NewHoldoutEvaluator(3, 0.25, nil, NewTrainTestSplitter(0.25, rand.New(rand.NewSource(4))), nil)

	result, err := evaluator.Evaluate(context.Background(), X, y, func(seed int64) (models.Model, error) {
		return models.NewRandomForest(5, 0, 2, 1, seed), nil
	})
	require.NoError(t, err)

	require.Len(t, result.Importances, 4)
	sum := 0.0
	for _, v := range result.Importances {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestHoldoutEvaluatorRequiresProbabilities(t *testing.T) {
	X, y := synthetic(40, 3, 2, 5)
	evaluator := NewHoldoutEvaluator(2, 0.25, nil, nil, nil)

	_, err := evaluator.Evaluate(context.Background(), X, y, func(seed int64) (models.Model, error) {
		return models.NewKMeans(2, 50, 2, seed), nil
	})
	assert.Error(t, err)
}

func TestHoldoutEvaluatorHonorsCancellation(t *testing.T) {
	X, y := synthetic(40, 3, 2, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHoldoutEvaluator(2, 0.25, nil, nil, nil).Evaluate(ctx, X, y, func(seed int64) (models.Model, error) {
		return models.NewLogisticRegression(1, 50), nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
