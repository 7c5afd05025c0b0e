package preprocessing

import (
	"math"

	"github.com/montanaflynn/stats"
)

// MissingValue replaces anything the transforms cannot represent.
const MissingValue = -1.0

// MicrobiomeTransform log2-transforms abundance rows and z-scores each row using the
// population standard deviation. Non-finite values are set to MissingValue both after the
// log and after the z-score, so zeros, negatives and constant rows all end up as -1.
// The input is not modified.
func MicrobiomeTransform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		logged := make([]float64, len(row))
		for j, v := range row {
			logged[j] = finiteOr(math.Log2(v), MissingValue)
		}
		out[i] = zscoreRow(logged)
	}
	return out
}

func zscoreRow(row []float64) []float64 {
	z := make([]float64, len(row))
	if len(row) == 0 {
		return z
	}

	mean, err := stats.Mean(row)
	if err != nil {
		mean = math.NaN()
	}
	std, err := stats.StandardDeviationPopulation(row)
	if err != nil {
		std = math.NaN()
	}

	for j, v := range row {
		z[j] = finiteOr((v-mean)/std, MissingValue)
	}
	return z
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
