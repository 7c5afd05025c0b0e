package experiment

import (
	"fmt"
	"os"

	"github.com/mohdazh1/CMSE491-Semester-Project/internal/data"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/models"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataPath  string      `yaml:"data_path"`
	OutputDir string      `yaml:"output_dir"`
	Seed      *int64      `yaml:"seed,omitempty"`
	Schema    data.Schema `yaml:"schema"`

	Holdout struct {
		Trials   int      `yaml:"trials"`
		TestSize float64  `yaml:"test_size"`
		Families []string `yaml:"families"`
	} `yaml:"holdout"`

	Agreement struct {
		Trials     int     `yaml:"trials"`
		TestSize   float64 `yaml:"test_size"`
		Ks         []int   `yaml:"ks"`
		Components int     `yaml:"components"`
	} `yaml:"agreement"`

	Models struct {
		Forest   models.ModelConfig `yaml:"forest"`
		SVM      models.ModelConfig `yaml:"svm"`
		Logistic models.ModelConfig `yaml:"logistic"`
		KMeans   models.ModelConfig `yaml:"kmeans"`
	} `yaml:"models"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		DataPath:  "data.csv",
		OutputDir: ".",
		Schema:    data.DefaultSchema(),
	}

	cfg.Holdout.Trials = 20
	cfg.Holdout.TestSize = 0.25
	cfg.Holdout.Families = []string{models.AlgorithmForest, models.AlgorithmSVM, models.AlgorithmLogistic}

	cfg.Agreement.Trials = 20
	cfg.Agreement.TestSize = 0.25
	cfg.Agreement.Ks = []int{2, 3, 4, 5, 6, 7, 8, 9, 10}
	cfg.Agreement.Components = 5

	cfg.Models.Forest = models.DefaultConfig(models.AlgorithmForest)
	cfg.Models.SVM = models.DefaultConfig(models.AlgorithmSVM)
	cfg.Models.Logistic = models.DefaultConfig(models.AlgorithmLogistic)
	cfg.Models.KMeans = models.DefaultConfig(models.AlgorithmKMeans)

	return cfg
}

// LoadConfig reads a YAML file over the defaults; keys absent from the file keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// ModelConfig returns the settings for algorithm with Algorithm filled in.
func (c *Config) ModelConfig(algorithm string) (models.ModelConfig, error) {
	var mc models.ModelConfig
	switch algorithm {
	case models.AlgorithmForest:
		mc = c.Models.Forest
	case models.AlgorithmSVM:
		mc = c.Models.SVM
	case models.AlgorithmLogistic:
		mc = c.Models.Logistic
	case models.AlgorithmKMeans:
		mc = c.Models.KMeans
	default:
		return mc, fmt.Errorf("unknown algorithm: %s", algorithm)
	}
	mc.Algorithm = algorithm
	return mc, nil
}

func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data_path is required")
	}
	if c.Schema.LabelColumn == "" {
		return fmt.Errorf("schema.label_column is required")
	}
	if c.Holdout.Trials <= 0 {
		return fmt.Errorf("holdout.trials must be positive, got %d", c.Holdout.Trials)
	}
	if c.Holdout.TestSize <= 0 || c.Holdout.TestSize >= 1 {
		return fmt.Errorf("holdout.test_size must be between 0 and 1, got %v", c.Holdout.TestSize)
	}
	if c.Agreement.Trials <= 0 {
		return fmt.Errorf("agreement.trials must be positive, got %d", c.Agreement.Trials)
	}
	if c.Agreement.TestSize <= 0 || c.Agreement.TestSize >= 1 {
		return fmt.Errorf("agreement.test_size must be between 0 and 1, got %v", c.Agreement.TestSize)
	}
	if c.Agreement.Components <= 0 {
		return fmt.Errorf("agreement.components must be positive, got %d", c.Agreement.Components)
	}
	for _, k := range c.Agreement.Ks {
		if k < 2 {
			return fmt.Errorf("agreement.ks must be at least 2, got %d", k)
		}
	}
	for _, family := range c.Holdout.Families {
		if _, err := c.ModelConfig(family); err != nil {
			return fmt.Errorf("holdout.families: %w", err)
		}
		if family == models.AlgorithmKMeans {
			return fmt.Errorf("holdout.families: kmeans does not produce class probabilities")
		}
	}
	return nil
}
