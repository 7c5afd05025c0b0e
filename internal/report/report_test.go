package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mohdazh1/CMSE491-Semester-Project/internal/evaluation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, false).Banner("Working on RFC")

	assert.Equal(t, "################\n#Working on RFC#\n################\n", out.String())
}

func TestFormatMatrix(t *testing.T) {
	assert.Equal(t, "[[ 3  1  0]\n [ 0 12  0]\n [ 1  0  1]]", FormatMatrix([][]int{{3, 1, 0}, {0, 12, 0}, {1, 0, 1}}))
	assert.Equal(t, "[[1 0]\n [0 1]]", FormatMatrix([][]int{{1, 0}, {0, 1}}))
}

func TestFormatClassificationReport(t *testing.T) {
	m, err := evaluation.CalculateMetrics([]int{0, 0, 1, 1, 2, 2}, []int{0, 1, 1, 1, 2, 0}, []int{0, 1, 2})
	require.NoError(t, err)

	got := FormatClassificationReport(m, []string{"Follow", "Healthy", "Sick"})
	lines := strings.Split(got, "\n")

	assert.Equal(t, "              precision    recall  f1-score   support", lines[0])
	assert.Equal(t, "      Follow       0.50      0.50      0.50         2", lines[2])
	assert.Equal(t, "     Healthy       0.67      1.00      0.80         2", lines[3])
	assert.Equal(t, "        Sick       1.00      0.50      0.67         2", lines[4])
	assert.Equal(t, "    accuracy                           0.67         6", lines[6])
	assert.True(t, strings.HasPrefix(lines[7], "   macro avg"))
	assert.True(t, strings.HasPrefix(lines[8], "weighted avg"))
}

func TestAUCSummary(t *testing.T) {
	acc := evaluation.NewAUCAccumulator([]int{0, 1})
	acc.Add(0, 0.8)
	acc.Add(0, 0.70005)

	var out bytes.Buffer
	NewPrinter(&out, false).AUCSummary(20, acc, []string{"Follow", "Healthy"})

	assert.Equal(t, "\nAfter 20 Trials:\nAUC Follow: 0.75\nAUC Healthy: nan\n", out.String())
}

func TestAgreementResult(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, false).AgreementResult(3, []PairScore{{Pair: "Log,RFC", Mean: 0.123456}, {Pair: "KMeans,Lin", Mean: 1}})

	assert.Equal(t, "Result for K = 3\nLog,RFC: 0.1235\nKMeans,Lin: 1\n\n", out.String())
}

func TestRound4(t *testing.T) {
	assert.Equal(t, "0.8", Round4(0.8))
	assert.Equal(t, "0.6667", Round4(2.0/3.0))
	assert.Equal(t, "nan", Round4(math.NaN()))
	assert.Equal(t, "-0.0417", Round4(-0.04166))
}

func TestSaveConfusionMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random_forest.png")
	require.NoError(t, SaveConfusionMatrix(path, "Random Forest Classifier", [][]int{{3, 1, 0}, {0, 2, 0}, {1, 0, 4}}, []string{"Follow", "Healthy", "Sick"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	zeros := filepath.Join(t.TempDir(), "zeros.png")
	require.NoError(t, SaveConfusionMatrix(zeros, "empty", [][]int{{0, 0}, {0, 0}}, []string{"a", "b"}))

	assert.Error(t, SaveConfusionMatrix(path, "bad", [][]int{{1}}, []string{"a", "b"}))
}

func TestSaveImportanceChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full_w_clinical_importances.png")
	require.NoError(t, SaveImportanceChart(path, []string{"Fever", "Virus", "Cough"}, []float64{0.2, 0.5, 0.3}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, SaveImportanceChart(path, []string{"Fever"}, nil))
}
