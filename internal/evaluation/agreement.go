package evaluation

import (
	"fmt"
)

// AdjustedRandIndex scores the agreement of two labelings of the same rows, corrected for
// chance and invariant to renaming labels. It counts ordered row pairs placed together or
// apart by each labeling; when no pair is split differently the labelings are the same
// partition and the score is exactly 1.0, which also covers two single-cluster labelings.
func AdjustedRandIndex(a, b []int) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d and %d labels", ErrLengthMismatch, len(a), len(b))
	}

	n := int64(len(a))
	if n == 0 {
		return 1.0, nil
	}

	type cell struct{ a, b int }
	contingency := make(map[cell]int64)
	rowSums := make(map[int]int64)
	colSums := make(map[int]int64)
	for i := range a {
		contingency[cell{a[i], b[i]}]++
		rowSums[a[i]]++
		colSums[b[i]]++
	}

	var sumSquares int64
	for _, c := range contingency {
		sumSquares += c * c
	}
	var rowSquares, colSquares int64
	for _, s := range rowSums {
		rowSquares += s * s
	}
	for _, s := range colSums {
		colSquares += s * s
	}

	tp := sumSquares - n
	fp := colSquares - sumSquares
	fn := rowSquares - sumSquares
	tn := n*n - fp - fn - sumSquares

	if fn == 0 && fp == 0 {
		return 1.0, nil
	}

	numerator := 2 * (float64(tp)*float64(tn) - float64(fn)*float64(fp))
	denominator := float64(tp+fn)*float64(fn+tn) + float64(tp+fp)*float64(fp+tn)
	return numerator / denominator, nil
}
