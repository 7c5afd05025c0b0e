package models

import (
	"fmt"
	"math"
	"math/rand"
)

// KMeans partitions rows into K clusters. It implements Model only: labels passed to Fit
// are ignored and Predict returns the index of the nearest centroid.
type KMeans struct {
	BaseModel
	K         int
	MaxIter   int
	NInit     int
	Centroids [][]float64
	Inertia   float64 // sum of squared distances to the nearest centroid

	rng *rand.Rand
}

func NewKMeans(k, maxIter, nInit int, seed int64) *KMeans {
	if maxIter <= 0 {
		maxIter = 300
	}
	if nInit <= 0 {
		nInit = 10
	}

	return &KMeans{
		K:       k,
		MaxIter: maxIter,
		NInit:   nInit,
		rng:     rand.New(rand.NewSource(seed)),
		BaseModel: BaseModel{
			Name: "KMeans",
			Params: map[string]any{
				"k":        k,
				"max_iter": maxIter,
				"n_init":   nInit,
			},
		},
	}
}

// Fit keeps the lowest-inertia run out of NInit k-means++ initialisations.
func (m *KMeans) Fit(X [][]float64, _ []int) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: empty feature matrix", ErrInvalidInput)
	}
	if m.K <= 0 || len(X) < m.K {
		return fmt.Errorf("%w: cannot form %d clusters from %d rows", ErrInvalidInput, m.K, len(X))
	}
	for i, row := range X {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite value at row %d, feature %d", ErrInvalidInput, i, j)
			}
		}
	}

	m.Centroids = nil
	m.Inertia = math.Inf(1)
	for run := 0; run < m.NInit; run++ {
		centroids, inertia := m.lloyd(X, m.initCenters(X))
		if m.Centroids == nil || inertia < m.Inertia {
			m.Centroids = centroids
			m.Inertia = inertia
		}
	}
	return nil
}

func (m *KMeans) lloyd(X [][]float64, centroids [][]float64) ([][]float64, float64) {
	n, p := len(X), len(X[0])
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for it := 0; it < m.MaxIter; it++ {
		changed := false
		for i, row := range X {
			best, _ := nearest(row, centroids)
			if assign[i] != best {
				changed = true
			}
			assign[i] = best
		}

		sums := make([][]float64, m.K)
		counts := make([]int, m.K)
		for k := range sums {
			sums[k] = make([]float64, p)
		}
		for i, row := range X {
			k := assign[i]
			counts[k]++
			for j, v := range row {
				sums[k][j] += v
			}
		}
		for k := range centroids {
			if counts[k] == 0 {
				continue
			}
			for j := 0; j < p; j++ {
				centroids[k][j] = sums[k][j] / float64(counts[k])
			}
		}

		if !changed {
			break
		}
	}

	inertia := 0.0
	for _, row := range X {
		_, d := nearest(row, centroids)
		inertia += d
	}
	return centroids, inertia
}

// initCenters applies k-means++ seeding.
func (m *KMeans) initCenters(X [][]float64) [][]float64 {
	n := len(X)
	centroids := make([][]float64, 0, m.K)
	centroids = append(centroids, append([]float64(nil), X[m.rng.Intn(n)]...))

	distSq := make([]float64, n)
	for len(centroids) < m.K {
		total := 0.0
		for i, row := range X {
			_, d := nearest(row, centroids)
			distSq[i] = d
			total += d
		}

		pick := n - 1
		if total > 0 {
			r := m.rng.Float64() * total
			cumulative := 0.0
			for i, d := range distSq {
				cumulative += d
				if cumulative >= r {
					pick = i
					break
				}
			}
		} else {
			pick = m.rng.Intn(n)
		}
		centroids = append(centroids, append([]float64(nil), X[pick]...))
	}
	return centroids
}

func (m *KMeans) Predict(X [][]float64) []int {
	assignments := make([]int, len(X))
	for i, row := range X {
		assignments[i], _ = nearest(row, m.Centroids)
	}
	return assignments
}

// nearest always returns a valid index when centroids is non-empty, even if every
// distance overflows.
func nearest(row []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for k, c := range centroids {
		d := 0.0
		for j, v := range row {
			diff := v - c[j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, bestDist
}
