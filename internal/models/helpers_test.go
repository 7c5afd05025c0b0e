package models

import (
	"math/rand"
)

// blobs returns nPerClass rows around well separated centers, one center per class.
func blobs(nPerClass, nFeatures int, classes []int, seed int64) ([][]float64, []int) {
	r := rand.New(rand.NewSource(seed))
	var X [][]float64
	var y []int
	for c, class := range classes {
		for i := 0; i < nPerClass; i++ {
			row := make([]float64, nFeatures)
			for j := range row {
				row[j] = r.NormFloat64() * 0.3
			}
			row[c%nFeatures] += 4
			X = append(X, row)
			y = append(y, class)
		}
	}
	return X, y
}

func accuracy(yTrue, yPred []int) float64 {
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}
