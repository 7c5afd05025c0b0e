package models

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

type RandomForest struct {
	BaseModel
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	MaxWorkers      int
	Trees           []*DecisionTree

	seed int64
}

func NewRandomForest(nTrees, maxDepth, minSamplesSplit, maxWorkers int, seed int64) *RandomForest {
	return &RandomForest{
		NTrees:          nTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MaxWorkers:      maxWorkers,
		seed:            seed,
		BaseModel: BaseModel{
			Name: "RandomForest",
			Params: map[string]any{
				"n_trees":           nTrees,
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
				"max_workers":       maxWorkers,
			},
		},
	}
}

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}
	if rf.NTrees <= 0 {
		return fmt.Errorf("%w: forest needs at least one tree", ErrInvalidInput)
	}

	rf.Classes = ExtractClasses(y)
	nFeatures := len(X[0])

	rf.MaxFeatures = int(math.Sqrt(float64(nFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	// Seeds are drawn up front so results do not depend on worker scheduling.
	r := rand.New(rand.NewSource(rf.seed))
	seeds := make([]int64, rf.NTrees)
	for i := range seeds {
		seeds[i] = r.Int63()
	}

	rf.Trees = make([]*DecisionTree, rf.NTrees)

	workers := rf.MaxWorkers
	if workers <= 0 || workers > rf.NTrees {
		workers = rf.NTrees
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i := 0; i < rf.NTrees; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tree, err := rf.trainSingleTree(X, y, seeds[i])
			if err != nil {
				return fmt.Errorf("tree %d training failed: %w", i, err)
			}
			rf.Trees[i] = tree
			return nil
		})
	}

	return g.Wait()
}

func (rf *RandomForest) trainSingleTree(X [][]float64, y []int, seed int64) (*DecisionTree, error) {
	r := rand.New(rand.NewSource(seed))

	n := len(X)
	XBoot := make([][]float64, n)
	yBoot := make([]int, n)
	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = X[idx]
		yBoot[i] = y[idx]
	}

	tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit, r.Int63())
	tree.MaxFeatures = rf.MaxFeatures
	if err := tree.fitWithClasses(XBoot, yBoot, rf.Classes); err != nil {
		return nil, err
	}

	return tree, nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
	proba := rf.PredictProba(X)
	predictions := make([]int, len(X))
	for i, row := range proba {
		predictions[i] = rf.Classes[floats.MaxIdx(row)]
	}
	return predictions
}

// PredictProba averages the leaf class fractions of all trees.
func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
	proba := make([][]float64, len(X))
	for i := range proba {
		proba[i] = make([]float64, len(rf.Classes))
	}

	for _, tree := range rf.Trees {
		for i, row := range tree.PredictProba(X) {
			floats.Add(proba[i], row)
		}
	}

	for i := range proba {
		floats.Scale(1/float64(len(rf.Trees)), proba[i])
	}

	return proba
}

// FeatureImportances is the mean of the per-tree normalized importances.
func (rf *RandomForest) FeatureImportances() []float64 {
	if len(rf.Trees) == 0 {
		return nil
	}

	importances := make([]float64, rf.Trees[0].NFeatures)
	for _, tree := range rf.Trees {
		floats.Add(importances, tree.importances)
	}

	total := floats.Sum(importances)
	if total > 0 {
		floats.Scale(1/total, importances)
	}
	return importances
}
