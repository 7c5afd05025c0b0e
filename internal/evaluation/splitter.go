package evaluation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

var ErrLengthMismatch = errors.New("length mismatch")

// Split is one holdout partition. TrainIdx and TestIdx index the rows of the input X.
type Split struct {
	TrainIdx []int
	TestIdx  []int
	XTrain   [][]float64
	XTest    [][]float64
	YTrain   []int
	YTest    []int
}

type TrainTestSplitter struct {
	testSize float64
	rng      *rand.Rand
}

// NewTrainTestSplitter draws every split from rng. A nil rng is seeded from the clock, so
// consecutive runs see different splits.
func NewTrainTestSplitter(testSize float64, rng *rand.Rand) *TrainTestSplitter {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TrainTestSplitter{
		testSize: testSize,
		rng:      rng,
	}
}

// Split shuffles the row indices and holds out ceil(n*testSize) rows for testing.
func (tts *TrainTestSplitter) Split(X [][]float64, y []int) (*Split, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: x has %d rows, y has %d", ErrLengthMismatch, len(X), len(y))
	}

	if len(X) == 0 {
		return nil, fmt.Errorf("cannot split empty dataset")
	}

	if tts.testSize <= 0 || tts.testSize >= 1 {
		return nil, fmt.Errorf("test size must be between 0 and 1")
	}

	n := len(X)
	testCount := int(math.Ceil(float64(n) * tts.testSize))
	trainCount := n - testCount
	if testCount == 0 || trainCount == 0 {
		return nil, fmt.Errorf("test size %.2f leaves an empty partition for %d rows", tts.testSize, n)
	}

	indices := tts.rng.Perm(n)

	split := &Split{
		TrainIdx: indices[testCount:],
		TestIdx:  indices[:testCount],
		XTrain:   make([][]float64, trainCount),
		XTest:    make([][]float64, testCount),
		YTrain:   make([]int, trainCount),
		YTest:    make([]int, testCount),
	}

	for i, idx := range split.TrainIdx {
		split.XTrain[i] = X[idx]
		split.YTrain[i] = y[idx]
	}

	for i, idx := range split.TestIdx {
		split.XTest[i] = X[idx]
		split.YTest[i] = y[idx]
	}

	return split, nil
}

// Int63 hands out a seed from the splitter's stream so fitted models follow the same
// seeding as the splits.
func (tts *TrainTestSplitter) Int63() int64 {
	return tts.rng.Int63()
}
