package evaluation

import (
	"fmt"
	"math"
)

// ClassificationMetrics is the content of a classification report plus the confusion
// matrix it was derived from. Rows of ConfusionMatrix are true classes, columns are
// predictions, both ordered like Classes.
type ClassificationMetrics struct {
	Classes           []int                `json:"classes"`
	Accuracy          float64              `json:"accuracy"`
	MacroPrecision    float64              `json:"macro_precision"`
	MacroRecall       float64              `json:"macro_recall"`
	MacroF1           float64              `json:"macro_f1"`
	WeightedPrecision float64              `json:"weighted_precision"`
	WeightedRecall    float64              `json:"weighted_recall"`
	WeightedF1        float64              `json:"weighted_f1"`
	PerClassMetrics   map[int]ClassMetrics `json:"per_class_metrics"`
	ConfusionMatrix   [][]int              `json:"confusion_matrix"`
	NumSamples        int                  `json:"num_samples"`
}

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

func CalculateMetrics(yTrue, yPred []int, classes []int) (*ClassificationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d true labels, %d predictions", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 || len(classes) == 0 {
		return nil, fmt.Errorf("cannot score an empty prediction set")
	}

	confusionMatrix := BuildConfusionMatrix(yTrue, yPred, classes)

	perClassMetrics := make(map[int]ClassMetrics, len(classes))
	var macroPrec, macroRec, macroF1 float64
	var weightedPrec, weightedRec, weightedF1 float64
	totalSupport := 0
	correct := 0

	for i, class := range classes {
		tp := confusionMatrix[i][i]
		correct += tp

		predicted, support := 0, 0
		for j := range classes {
			predicted += confusionMatrix[j][i]
			support += confusionMatrix[i][j]
		}

		precision := safeDivide(float64(tp), float64(predicted))
		recall := safeDivide(float64(tp), float64(support))
		f1 := safeDivide(2*precision*recall, precision+recall)

		perClassMetrics[class] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1Score:   f1,
			Support:   support,
		}

		macroPrec += precision
		macroRec += recall
		macroF1 += f1

		weightedPrec += precision * float64(support)
		weightedRec += recall * float64(support)
		weightedF1 += f1 * float64(support)
		totalSupport += support
	}

	numClasses := float64(len(classes))

	return &ClassificationMetrics{
		Classes:           append([]int(nil), classes...),
		Accuracy:          float64(correct) / float64(len(yTrue)),
		MacroPrecision:    macroPrec / numClasses,
		MacroRecall:       macroRec / numClasses,
		MacroF1:           macroF1 / numClasses,
		WeightedPrecision: safeDivide(weightedPrec, float64(totalSupport)),
		WeightedRecall:    safeDivide(weightedRec, float64(totalSupport)),
		WeightedF1:        safeDivide(weightedF1, float64(totalSupport)),
		PerClassMetrics:   perClassMetrics,
		ConfusionMatrix:   confusionMatrix,
		NumSamples:        len(yTrue),
	}, nil
}

// BuildConfusionMatrix counts (true, predicted) pairs; labels outside classes are ignored.
func BuildConfusionMatrix(yTrue, yPred []int, classes []int) [][]int {
	numClasses := len(classes)
	matrix := make([][]int, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}

	classToIdx := make(map[int]int)
	for i, class := range classes {
		classToIdx[class] = i
	}

	for i := range yTrue {
		trueIdx, trueOk := classToIdx[yTrue[i]]
		predIdx, predOk := classToIdx[yPred[i]]
		if trueOk && predOk {
			matrix[trueIdx][predIdx]++
		}
	}

	return matrix
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}
