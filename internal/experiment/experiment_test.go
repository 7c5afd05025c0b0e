package experiment

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mohdazh1/CMSE491-Semester-Project/internal/evaluation"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/models"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type constantModel struct {
	label int
	fits  *int
}

func (m constantModel) Fit(X [][]float64, y []int) error {
	*m.fits++
	return nil
}

func (m constantModel) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range out {
		out[i] = m.label
	}
	return out
}

func (m constantModel) GetName() string           { return "constant" }
func (m constantModel) GetParams() map[string]any { return nil }

func constantMembers(fits *int, sameLabel bool) []Member {
	var members []Member
	for i, name := range []string{"Log", "RFC", "KMeans", "Lin"} {
		label := i
		if sameLabel {
			label = 0
		}
		members = append(members, Member{
			Name: name,
			New: func(k int, seed int64) (models.Model, error) {
				return constantModel{label: label, fits: fits}, nil
			},
		})
	}
	return members
}

func grid(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 5)}
		y[i] = i % 3
	}
	return X, y
}

func TestScannerConstantModelsAgreeExactly(t *testing.T) {
	X, y := grid(40)
	splitter := evaluation.NewTrainTestSplitter(0.25, rand.New(rand.NewSource(1)))
	for _, sameLabel := range []bool{true, false} {
		fits := 0
		scanner := NewScanner(4, constantMembers(&fits, sameLabel), splitter, zap.NewNop())

		results, err := scanner.Scan(context.Background(), X, y, []int{2})
		require.NoError(t, err)
		require.Len(t, results, 1)

		res := results[0]
		assert.Equal(t, 2, res.K)
		assert.Equal(t, 4, res.Trials)
		require.Len(t, res.Means, 6)
		for _, pm := range res.Means {
			assert.Equal(t, 1.0, pm.Mean, pm.Pair)
		}
		assert.Equal(t, 16, fits)
	}
}

func TestScannerOrdersKsAndPairs(t *testing.T) {
	X, y := grid(30)
	fits := 0
	scanner := NewScanner(1, constantMembers(&fits, false), nil, nil)

	results, err := scanner.Scan(context.Background(), X, y, []int{5, 2, 3})
	require.NoError(t, err)

	var ks []int
	for _, r := range results {
		ks = append(ks, r.K)
	}
	assert.Equal(t, []int{2, 3, 5}, ks)

	var pairs []string
	for _, pm := range results[0].Means {
		pairs = append(pairs, pm.Pair)
	}
	assert.Equal(t, []string{"Log,RFC", "Log,KMeans", "Log,Lin", "RFC,KMeans", "RFC,Lin", "KMeans,Lin"}, pairs)
}

func TestScannerPassesKToMembers(t *testing.T) {
	X, y := grid(30)
	var seen []int
	members := []Member{
		{Name: "A", New: func(k int, seed int64) (models.Model, error) {
			seen = append(seen, k)
			return models.NewKMeans(k, 50, 1, seed), nil
		}},
		{Name: "B", New: func(k int, seed int64) (models.Model, error) {
			return models.NewLogisticRegression(1, 50), nil
		}},
	}

	_, err := NewScanner(2, members, nil, nil).Scan(context.Background(), X, y, []int{3})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, seen)
}

func TestScannerReportsFitFailure(t *testing.T) {
	X, y := grid(20)
	members := []Member{
		{Name: "A", New: func(k int, seed int64) (models.Model, error) {
			return models.NewKMeans(50, 10, 1, seed), nil
		}},
		{Name: "B", New: func(k int, seed int64) (models.Model, error) {
			return models.NewKMeans(2, 10, 1, seed), nil
		}},
	}

	_, err := NewScanner(1, members, nil, nil).Scan(context.Background(), X, y, []int{2})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestDefaultMembers(t *testing.T) {
	members, err := DefaultMembers(DefaultConfig())
	require.NoError(t, err)

	var names []string
	for _, m := range members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Log", "RFC", "KMeans", "Lin"}, names)

	km, err := members[2].New(4, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, km.(*models.KMeans).K)
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_path: clinical.csv
seed: 7
holdout:
  trials: 3
agreement:
  ks: [4, 2]
models:
  forest:
    n_trees: 12
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "clinical.csv", cfg.DataPath)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(7), *cfg.Seed)
	assert.Equal(t, 3, cfg.Holdout.Trials)
	assert.Equal(t, 0.25, cfg.Holdout.TestSize)
	assert.Equal(t, []int{4, 2}, cfg.Agreement.Ks)
	assert.Equal(t, 5, cfg.Agreement.Components)
	assert.Equal(t, 12, cfg.Models.Forest.NTrees)
	assert.Equal(t, 5, cfg.Models.Forest.MaxWorkers)
	assert.Equal(t, "Health", cfg.Schema.LabelColumn)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero trials", func(c *Config) { c.Holdout.Trials = 0 }},
		{"test size one", func(c *Config) { c.Agreement.TestSize = 1 }},
		{"k of one", func(c *Config) { c.Agreement.Ks = []int{1} }},
		{"unknown family", func(c *Config) { c.Holdout.Families = []string{"knn"} }},
		{"clusterer family", func(c *Config) { c.Holdout.Families = []string{"kmeans"} }},
	}

	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func writeDataset(t *testing.T, dir string, n int) string {
	t.Helper()
	r := rand.New(rand.NewSource(3))
	classes := []string{"Sick", "Healthy", "Follow"}
	answers := []string{"yes", "no", "Yes - mild", "missing"}

	var b strings.Builder
	b.WriteString("Id,Health,No Symptoms,Cough,Fever,Bacteroidetes,Firmicutes,Proteobacteria,Actinobacteria,Virus\n")
	for i := 0; i < n; i++ {
		c := i % 3
		fmt.Fprintf(&b, "%d,%s,%s,%s,%d", i, classes[c], answers[r.Intn(4)], answers[(c+r.Intn(2))%4], c+r.Intn(2))
		for j := 0; j < 5; j++ {
			abundance := 1 + r.Float64()*10
			if j == c {
				abundance += 50
			}
			fmt.Fprintf(&b, ",%.4f", abundance)
		}
		b.WriteString("\n")
	}

	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunnerProducesArtifacts(t *testing.T) {
	dir := t.TempDir()
	seed := int64(11)

	cfg := DefaultConfig()
	cfg.DataPath = writeDataset(t, dir, 60)
	cfg.OutputDir = filepath.Join(dir, "results")
	cfg.Seed = &seed
	cfg.Holdout.Trials = 2
	cfg.Agreement.Trials = 2
	cfg.Agreement.Ks = []int{3, 2}
	cfg.Models.Forest.NTrees = 5
	cfg.Models.KMeans.NInit = 2

	var out bytes.Buffer
	bundle, err := NewRunner(cfg, zap.NewNop(), &out, false).Run(context.Background())
	require.NoError(t, err)

	for _, name := range []string{
		"random_forest.png", "lin_svm.png", "log_reg.png",
		ImportanceChartFile, ImportanceTextFile, SummaryFile,
	} {
		info, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, ImportanceTextFile))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 8)

	assert.Equal(t, []string{"Follow", "Healthy", "Sick"}, bundle.Classes)
	require.Len(t, bundle.Families, 3)
	for _, fam := range bundle.Families {
		require.Len(t, fam.MeanAUC, 3)
		for _, auc := range fam.MeanAUC {
			assert.LessOrEqual(t, auc.Count, 2)
		}
	}
	require.Len(t, bundle.Agreement, 2)
	assert.Equal(t, 2, bundle.Agreement[0].K)
	assert.Equal(t, 3, bundle.Agreement[1].K)

	loaded, err := persistence.LoadResultBundle(filepath.Join(cfg.OutputDir, SummaryFile))
	require.NoError(t, err)
	assert.Equal(t, bundle.RunID, loaded.RunID)

	text := out.String()
	assert.Contains(t, text, "#Data Loaded and Ready!!#")
	assert.Contains(t, text, "After 2 Trials:")
	assert.Contains(t, text, "AUC Sick: ")
	assert.Contains(t, text, "#Comparison Results for K=2#")
	assert.Contains(t, text, "Result for K = 3")
	assert.Contains(t, text, "KMeans,Lin: ")
	assert.Contains(t, text, "weighted avg")
}

func TestRunnerFailsOnMissingData(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataPath = filepath.Join(t.TempDir(), "absent.csv")

	_, err := NewRunner(cfg, nil, &bytes.Buffer{}, false).Run(context.Background())
	assert.Error(t, err)
}

func TestRunnerLogsDatasetStats(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataPath = writeDataset(t, dir, 30)
	cfg.OutputDir = filepath.Join(dir, "results")

	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRunner(cfg, zap.New(core), &bytes.Buffer{}, false)

	ds, err := r.loadData(r.logger)
	require.NoError(t, err)

	classRows := make(map[string]int64)
	for _, entry := range logs.FilterMessage("class distribution").All() {
		fields := entry.ContextMap()
		classRows[fields["class"].(string)] = fields["rows"].(int64)
	}
	assert.Equal(t, map[string]int64{"Sick": 10, "Healthy": 10, "Follow": 10}, classRows)

	featureLogs := logs.FilterMessage("feature stats").All()
	require.Len(t, featureLogs, len(ds.Features))
	for j, entry := range featureLogs {
		fields := entry.ContextMap()
		assert.Equal(t, ds.Features[j], fields["feature"])
		assert.LessOrEqual(t, fields["min"].(float64), fields["mean"].(float64))
		assert.LessOrEqual(t, fields["mean"].(float64), fields["max"].(float64))
	}
}
