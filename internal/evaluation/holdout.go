package evaluation

import (
	"context"
	"fmt"

	"github.com/mohdazh1/CMSE491-Semester-Project/internal/models"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// ModelFactory builds an unfitted model for one trial.
type ModelFactory func(seed int64) (models.Model, error)

type HoldoutEvaluator struct {
	Trials   int
	TestSize float64
	Classes  []int

	splitter *TrainTestSplitter
	logger   *zap.Logger
}

// HoldoutResult carries what the reports need after all trials. The Final* fields come
// from the last trial only.
type HoldoutResult struct {
	Model        string
	Trials       int
	AUC          *AUCAccumulator
	Importances  []float64
	FinalYTest   []int
	FinalYPred   []int
	FinalMetrics *ClassificationMetrics
}

func NewHoldoutEvaluator(trials int, testSize float64, classes []int, splitter *TrainTestSplitter, logger *zap.Logger) *HoldoutEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if splitter == nil {
		splitter = NewTrainTestSplitter(testSize, nil)
	}
	return &HoldoutEvaluator{
		Trials:   trials,
		TestSize: testSize,
		Classes:  append([]int(nil), classes...),
		splitter: splitter,
		logger:   logger,
	}
}

func (he *HoldoutEvaluator) Evaluate(ctx context.Context, X [][]float64, y []int, factory ModelFactory) (*HoldoutResult, error) {
	if he.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", he.Trials)
	}

	classes := he.Classes
	if len(classes) == 0 {
		classes = models.ExtractClasses(y)
	}

	result := &HoldoutResult{
		Trials: he.Trials,
		AUC:    NewAUCAccumulator(classes),
	}
	var importanceSum []float64

	for trial := 0; trial < he.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		split, err := he.splitter.Split(X, y)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		model, err := factory(he.splitter.Int63())
		if err != nil {
			return nil, fmt.Errorf("trial %d: failed to create model: %w", trial, err)
		}
		probModel, ok := model.(models.ProbabilisticModel)
		if !ok {
			return nil, fmt.Errorf("model %s does not produce class probabilities", model.GetName())
		}
		result.Model = probModel.GetName()

		if err := probModel.Fit(split.XTrain, split.YTrain); err != nil {
			return nil, fmt.Errorf("trial %d: failed to fit %s: %w", trial, probModel.GetName(), err)
		}

		yPred := probModel.Predict(split.XTest)
		proba := probModel.PredictProba(split.XTest)

		aucs, err := ClassAUCs(split.YTest, proba, probModel.GetClasses(), classes)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		for _, class := range classes {
			auc, ok := aucs[class]
			if !ok {
				he.logger.Debug("skipping degenerate class",
					zap.String("model", probModel.GetName()),
					zap.Int("trial", trial),
					zap.Int("class", class))
				continue
			}
			result.AUC.Add(class, auc)
		}

		if importer, ok := model.(models.FeatureImporter); ok {
			importances := importer.FeatureImportances()
			if importanceSum == nil {
				importanceSum = make([]float64, len(importances))
			}
			if len(importances) == len(importanceSum) {
				floats.Add(importanceSum, importances)
			}
		}

		if trial == he.Trials-1 {
			metrics, err := CalculateMetrics(split.YTest, yPred, classes)
			if err != nil {
				return nil, fmt.Errorf("trial %d: %w", trial, err)
			}
			result.FinalYTest = split.YTest
			result.FinalYPred = yPred
			result.FinalMetrics = metrics
		}

		he.logger.Debug("trial complete",
			zap.String("model", probModel.GetName()),
			zap.Int("trial", trial+1),
			zap.Int("train_rows", len(split.YTrain)),
			zap.Int("test_rows", len(split.YTest)))
	}

	if importanceSum != nil {
		floats.Scale(1/float64(he.Trials), importanceSum)
		result.Importances = importanceSum
	}

	return result, nil
}
