package models

import (
	"math"
	"math/rand"
	"sort"
)

type TreeNode struct {
	IsLeaf           bool
	Feature          int
	Threshold        float64
	Left             *TreeNode
	Right            *TreeNode
	Samples          int
	Impurity         float64
	ImpurityDecrease float64
	// Distribution holds class fractions indexed like the owning tree's Classes.
	Distribution []float64
}

// DecisionTree is a CART classifier using Gini impurity. With MaxFeatures > 0 each split
// considers a random subset of features, which is how the forest decorrelates its trees.
type DecisionTree struct {
	BaseModel
	Root            *TreeNode
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	NFeatures       int

	rng         *rand.Rand
	importances []float64
}

func NewDecisionTree(maxDepth, minSamplesSplit int, seed int64) *DecisionTree {
	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}

	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		rng:             rand.New(rand.NewSource(seed)),
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
			},
		},
	}
}

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}
	return dt.fitWithClasses(X, y, ExtractClasses(y))
}

// fitWithClasses lets the forest fix the class set so every tree's distributions line up,
// even when a bootstrap sample misses a class.
func (dt *DecisionTree) fitWithClasses(X [][]float64, y []int, classes []int) error {
	dt.Classes = classes
	dt.NFeatures = len(X[0])
	if dt.MaxFeatures <= 0 || dt.MaxFeatures > dt.NFeatures {
		dt.MaxFeatures = dt.NFeatures
	}
	dt.importances = make([]float64, dt.NFeatures)

	lookup := classIndex(classes)
	encoded := make([]int, len(y))
	for i, label := range y {
		encoded[i] = lookup[label]
	}

	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}

	dt.Root = dt.buildTree(X, encoded, indices, 0)

	total := 0.0
	for _, v := range dt.importances {
		total += v
	}
	if total > 0 {
		for j := range dt.importances {
			dt.importances[j] /= total
		}
	}
	return nil
}

func (dt *DecisionTree) buildTree(X [][]float64, y []int, indices []int, depth int) *TreeNode {
	counts := dt.countClasses(y, indices)
	node := &TreeNode{
		Samples:      len(indices),
		Impurity:     gini(counts, len(indices)),
		Distribution: normalizeCounts(counts, len(indices)),
	}

	if (dt.MaxDepth > 0 && depth >= dt.MaxDepth) ||
		len(indices) < dt.MinSamplesSplit ||
		node.Impurity == 0 {
		node.IsLeaf = true
		return node
	}

	feature, threshold, decrease, ok := dt.findBestSplit(X, y, indices, node.Impurity)
	if !ok {
		node.IsLeaf = true
		return node
	}

	var leftIndices, rightIndices []int
	for _, idx := range indices {
		if X[idx][feature] <= threshold {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}

	node.Feature = feature
	node.Threshold = threshold
	node.ImpurityDecrease = decrease
	dt.importances[feature] += decrease * float64(len(indices))

	node.Left = dt.buildTree(X, y, leftIndices, depth+1)
	node.Right = dt.buildTree(X, y, rightIndices, depth+1)

	return node
}

// findBestSplit samples MaxFeatures candidate features and keeps looking past them
// until at least one valid split is found.
func (dt *DecisionTree) findBestSplit(X [][]float64, y []int, indices []int, parentImpurity float64) (int, float64, float64, bool) {
	order := dt.rng.Perm(dt.NFeatures)
	nClasses := len(dt.Classes)
	n := len(indices)

	bestFeature := -1
	bestThreshold := 0.0
	bestDecrease := 0.0

	sorted := make([]int, n)
	left := make([]int, nClasses)
	right := make([]int, nClasses)

	for visited, feature := range order {
		if visited >= dt.MaxFeatures && bestFeature >= 0 {
			break
		}

		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return X[sorted[a]][feature] < X[sorted[b]][feature]
		})

		for c := range left {
			left[c] = 0
			right[c] = 0
		}
		for _, idx := range sorted {
			right[y[idx]]++
		}

		for i := 0; i < n-1; i++ {
			label := y[sorted[i]]
			left[label]++
			right[label]--

			current := X[sorted[i]][feature]
			next := X[sorted[i+1]][feature]
			if current == next {
				continue
			}

			nLeft := i + 1
			nRight := n - nLeft
			weighted := (float64(nLeft)*gini(left, nLeft) + float64(nRight)*gini(right, nRight)) / float64(n)
			decrease := parentImpurity - weighted

			if bestFeature < 0 || decrease > bestDecrease {
				bestFeature = feature
				bestThreshold = current + (next-current)/2
				if bestThreshold >= next {
					bestThreshold = current
				}
				bestDecrease = decrease
			}
		}
	}

	return bestFeature, bestThreshold, bestDecrease, bestFeature >= 0
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
	predictions := make([]int, len(X))
	for i, sample := range X {
		dist := dt.leaf(sample).Distribution
		best := 0
		for c := range dist {
			if dist[c] > dist[best] {
				best = c
			}
		}
		predictions[i] = dt.Classes[best]
	}
	return predictions
}

func (dt *DecisionTree) PredictProba(X [][]float64) [][]float64 {
	proba := make([][]float64, len(X))
	for i, sample := range X {
		dist := dt.leaf(sample).Distribution
		proba[i] = make([]float64, len(dist))
		copy(proba[i], dist)
	}
	return proba
}

// FeatureImportances returns the normalized total Gini decrease per feature.
func (dt *DecisionTree) FeatureImportances() []float64 {
	out := make([]float64, len(dt.importances))
	copy(out, dt.importances)
	return out
}

func (dt *DecisionTree) leaf(sample []float64) *TreeNode {
	node := dt.Root
	for !node.IsLeaf {
		if sample[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

func (dt *DecisionTree) countClasses(y []int, indices []int) []int {
	counts := make([]int, len(dt.Classes))
	for _, idx := range indices {
		counts[y[idx]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0.0
	}

	impurity := 1.0
	total := float64(n)
	for _, count := range counts {
		p := float64(count) / total
		impurity -= p * p
	}

	return math.Max(impurity, 0)
}

func normalizeCounts(counts []int, n int) []float64 {
	dist := make([]float64, len(counts))
	if n == 0 {
		return dist
	}
	for c, count := range counts {
		dist[c] = float64(count) / float64(n)
	}
	return dist
}
