package persistence

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ResultBundle is the machine-readable summary of one analysis run.
type ResultBundle struct {
	RunID     string             `yaml:"run_id"`
	CreatedAt time.Time          `yaml:"created_at"`
	Dataset   string             `yaml:"dataset"`
	Samples   int                `yaml:"samples"`
	Features  int                `yaml:"features"`
	Classes   []string           `yaml:"classes"`
	Seed      *int64             `yaml:"seed,omitempty"`
	Families  []FamilySummary    `yaml:"families"`
	Agreement []AgreementSummary `yaml:"agreement"`
}

type FamilySummary struct {
	Family   string         `yaml:"family"`
	Model    string         `yaml:"model"`
	Trials   int            `yaml:"trials"`
	MeanAUC  []ClassAUC     `yaml:"mean_auc"`
	Accuracy float64        `yaml:"final_trial_accuracy"`
	Params   map[string]any `yaml:"params,omitempty"`
}

type ClassAUC struct {
	Class string  `yaml:"class"`
	Mean  float64 `yaml:"mean"`
	Count int     `yaml:"count"`
}

type AgreementSummary struct {
	K      int        `yaml:"k"`
	Trials int        `yaml:"trials"`
	Pairs  []PairMean `yaml:"pairs"`
}

type PairMean struct {
	Pair string  `yaml:"pair"`
	Mean float64 `yaml:"mean"`
}

func NewResultBundle(dataset string) *ResultBundle {
	return &ResultBundle{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now(),
		Dataset:   dataset,
	}
}

func (rb *ResultBundle) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(rb); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return encoder.Close()
}

func LoadResultBundle(filename string) (*ResultBundle, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	var bundle ResultBundle
	if err := yaml.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return &bundle, nil
}

// SaveImportances writes one value per line in feature order using %.18e.
func SaveImportances(filename string, importances []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, v := range importances {
		fmt.Fprintf(w, "%.18e\n", v)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write importances: %w", err)
	}
	return nil
}
