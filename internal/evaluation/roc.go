package evaluation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// BinaryAUC integrates the ROC curve of scores against truth. ok is false when truth
// holds a single value or a score is NaN, where the ROC curve is undefined.
func BinaryAUC(scores []float64, truth []bool) (float64, bool, error) {
	if len(scores) != len(truth) {
		return 0, false, fmt.Errorf("%w: %d scores, %d labels", ErrLengthMismatch, len(scores), len(truth))
	}

	positives := 0
	for _, t := range truth {
		if t {
			positives++
		}
	}
	if positives == 0 || positives == len(truth) || floats.HasNaN(scores) {
		return math.NaN(), false, nil
	}

	y := append([]float64(nil), scores...)
	classes := append([]bool(nil), truth...)
	stat.SortWeightedLabeled(y, classes, nil)

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), true, nil
}

// ClassAUCs computes a one-vs-rest AUC for every class in classes. proba columns follow
// modelClasses; a class the model never saw scores zero for every row. Classes that are
// degenerate in yTest are absent from the result.
func ClassAUCs(yTest []int, proba [][]float64, modelClasses, classes []int) (map[int]float64, error) {
	if len(yTest) != len(proba) {
		return nil, fmt.Errorf("%w: %d labels, %d probability rows", ErrLengthMismatch, len(yTest), len(proba))
	}

	column := make(map[int]int, len(modelClasses))
	for j, class := range modelClasses {
		column[class] = j
	}

	aucs := make(map[int]float64, len(classes))
	scores := make([]float64, len(yTest))
	truth := make([]bool, len(yTest))

	for _, class := range classes {
		j, seen := column[class]
		for i, label := range yTest {
			truth[i] = label == class
			if seen {
				scores[i] = proba[i][j]
			} else {
				scores[i] = 0
			}
		}

		auc, ok, err := BinaryAUC(scores, truth)
		if err != nil {
			return nil, err
		}
		if ok {
			aucs[class] = auc
		}
	}

	return aucs, nil
}
