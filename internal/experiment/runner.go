package experiment

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mohdazh1/CMSE491-Semester-Project/internal/data"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/evaluation"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/models"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/persistence"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/preprocessing"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/report"
	"go.uber.org/zap"
)

const (
	ImportanceChartFile = "full_w_clinical_importances.png"
	ImportanceTextFile  = "importances_in_order_of_features.txt"
	SummaryFile         = "run_summary.yaml"
)

type family struct {
	working string
	title   string
	image   string
}

var families = map[string]family{
	models.AlgorithmForest:   {working: "Working on RFC", title: "Random Forest Classifier", image: "random_forest.png"},
	models.AlgorithmSVM:      {working: "Working on Linear Support Vector Machine", title: "Linear SVM", image: "lin_svm.png"},
	models.AlgorithmLogistic: {working: "Working on Logistic Regression", title: "Logistic Regression", image: "log_reg.png"},
}

// Runner executes the analysis phases in order: load, holdout evaluation per family,
// PCA projection, agreement scan, summary.
type Runner struct {
	Config *Config

	logger  *zap.Logger
	printer *report.Printer
	rng     *rand.Rand
}

func NewRunner(cfg *Config, logger *zap.Logger, out io.Writer, useColor bool) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	return &Runner{
		Config:  cfg,
		logger:  logger,
		printer: report.NewPrinter(out, useColor),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (r *Runner) Run(ctx context.Context) (*persistence.ResultBundle, error) {
	cfg := r.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	bundle := persistence.NewResultBundle(cfg.DataPath)
	bundle.Seed = cfg.Seed
	logger := r.logger.With(zap.String("run_id", bundle.RunID))

	ds, err := r.loadData(logger)
	if err != nil {
		return nil, err
	}
	bundle.Samples = len(ds.X)
	bundle.Features = len(ds.Features)
	bundle.Classes = ds.Classes

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, name := range cfg.Holdout.Families {
		summary, err := r.evaluateFamily(ctx, logger, ds, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		bundle.Families = append(bundle.Families, *summary)
		r.printer.Line("")
	}

	agreement, err := r.compareModels(ctx, logger, ds)
	if err != nil {
		return nil, err
	}
	bundle.Agreement = agreement

	summaryPath := filepath.Join(cfg.OutputDir, SummaryFile)
	if err := bundle.Save(summaryPath); err != nil {
		return nil, err
	}
	logger.Info("run complete", zap.String("summary", summaryPath))

	return bundle, nil
}

func (r *Runner) loadData(logger *zap.Logger) (*data.Dataset, error) {
	r.printer.Line("Loading in the Data")

	ds, err := data.NewCSVReader(r.Config.DataPath, r.Config.Schema).LoadData()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", r.Config.DataPath, err)
	}

	validator := data.NewDataValidator()
	if err := validator.ValidateDataset(ds.X, ds.Y); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	if err := validator.ValidateLabels(ds.Y); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	stats := validator.GetDatasetStats(ds.X, ds.Y)
	logger.Info("dataset loaded",
		zap.String("source", ds.Source),
		zap.Int("samples", stats.Samples),
		zap.Int("features", stats.Features),
		zap.Int("clinical_columns", len(ds.ClinicalColumns)),
		zap.Int("microbiome_columns", len(ds.MicrobiomeColumns)),
		zap.Strings("classes", ds.Classes))
	for i, column := range ds.ClinicalColumns {
		logger.Debug("clinical column", zap.String("column", column), zap.Stringer("kind", ds.ClinicalKinds[i]))
	}
	for code, name := range ds.Classes {
		logger.Debug("class distribution", zap.String("class", name), zap.Int("rows", stats.ClassDistribution[code]))
	}
	for j, fs := range stats.FeatureStats {
		logger.Debug("feature stats",
			zap.String("feature", ds.Features[j]),
			zap.Float64("min", fs.Min),
			zap.Float64("max", fs.Max),
			zap.Float64("mean", fs.Mean))
	}

	r.printer.Banner("Data Loaded and Ready!!")
	r.printer.Line("")
	return ds, nil
}

func (r *Runner) evaluateFamily(ctx context.Context, logger *zap.Logger, ds *data.Dataset, name string) (*persistence.FamilySummary, error) {
	cfg := r.Config
	fam, ok := families[name]
	if !ok {
		return nil, fmt.Errorf("unknown model family: %s", name)
	}
	mc, err := cfg.ModelConfig(name)
	if err != nil {
		return nil, err
	}

	r.printer.Banner(fam.working)

	splitter := evaluation.NewTrainTestSplitter(cfg.Holdout.TestSize, r.rng)
	evaluator := evaluation.NewHoldoutEvaluator(cfg.Holdout.Trials, cfg.Holdout.TestSize, ds.ClassLabels(), splitter, logger)

	startTime := time.Now()
	result, err := evaluator.Evaluate(ctx, ds.X, ds.Y, func(seed int64) (models.Model, error) {
		c := mc
		c.Seed = seed
		return models.CreateModel(c)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("holdout evaluation finished",
		zap.String("family", name),
		zap.String("model", result.Model),
		zap.Int("trials", result.Trials),
		zap.Duration("elapsed", time.Since(startTime)))

	final := result.FinalMetrics
	r.printer.ConfusionMatrix(final.ConfusionMatrix)
	imagePath := filepath.Join(cfg.OutputDir, fam.image)
	if err := report.SaveConfusionMatrix(imagePath, fam.title, final.ConfusionMatrix, ds.Classes); err != nil {
		return nil, err
	}
	r.printer.ClassificationReport(final, ds.Classes)

	r.printer.Banner(fam.title)
	r.printer.AUCSummary(result.Trials, result.AUC, ds.Classes)

	if result.Importances != nil {
		if err := r.saveImportances(logger, ds.Features, result.Importances); err != nil {
			return nil, err
		}
	}

	summary := &persistence.FamilySummary{
		Family:   name,
		Model:    result.Model,
		Trials:   result.Trials,
		Accuracy: final.Accuracy,
	}
	if probe, err := models.CreateModel(mc); err == nil {
		summary.Params = probe.GetParams()
	}
	for _, class := range result.AUC.Classes() {
		mean, _ := result.AUC.Mean(class)
		summary.MeanAUC = append(summary.MeanAUC, persistence.ClassAUC{
			Class: ds.Classes[class],
			Mean:  mean,
			Count: result.AUC.Count(class),
		})
	}
	return summary, nil
}

func (r *Runner) saveImportances(logger *zap.Logger, features []string, importances []float64) error {
	chartPath := filepath.Join(r.Config.OutputDir, ImportanceChartFile)
	if err := report.SaveImportanceChart(chartPath, features, importances); err != nil {
		return err
	}
	textPath := filepath.Join(r.Config.OutputDir, ImportanceTextFile)
	if err := persistence.SaveImportances(textPath, importances); err != nil {
		return err
	}
	logger.Info("feature importances written", zap.String("chart", chartPath), zap.String("values", textPath))
	return nil
}

func (r *Runner) compareModels(ctx context.Context, logger *zap.Logger, ds *data.Dataset) ([]persistence.AgreementSummary, error) {
	cfg := r.Config

	pca := preprocessing.NewPCA(cfg.Agreement.Components)
	projected, err := pca.FitTransform(ds.X)
	if err != nil {
		return nil, fmt.Errorf("failed to project features: %w", err)
	}
	logger.Info("pca fitted",
		zap.Int("components", cfg.Agreement.Components),
		zap.Float64s("explained_variance", pca.ExplainedVariance))

	members, err := DefaultMembers(cfg)
	if err != nil {
		return nil, err
	}
	splitter := evaluation.NewTrainTestSplitter(cfg.Agreement.TestSize, r.rng)
	scanner := NewScanner(cfg.Agreement.Trials, members, splitter, logger)

	ks := append([]int(nil), cfg.Agreement.Ks...)
	sort.Ints(ks)

	var summaries []persistence.AgreementSummary
	for _, k := range ks {
		r.printer.Banner(fmt.Sprintf("Comparison Results for K=%d", k))

		results, err := scanner.Scan(ctx, projected, ds.Y, []int{k})
		if err != nil {
			return nil, fmt.Errorf("agreement scan: %w", err)
		}

		for _, res := range results {
			summary := persistence.AgreementSummary{K: res.K, Trials: res.Trials}
			scores := make([]report.PairScore, 0, len(res.Means))
			for _, pm := range res.Means {
				summary.Pairs = append(summary.Pairs, persistence.PairMean{Pair: pm.Pair, Mean: pm.Mean})
				scores = append(scores, report.PairScore{Pair: pm.Pair, Mean: pm.Mean})
			}
			r.printer.AgreementResult(res.K, scores)
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}
