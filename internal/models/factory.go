package models

import (
	"fmt"
)

const (
	AlgorithmForest   = "forest"
	AlgorithmSVM      = "svm"
	AlgorithmLogistic = "logistic"
	AlgorithmKMeans   = "kmeans"
)

type ModelConfig struct {
	Algorithm  string  `yaml:"-"`
	NTrees     int     `yaml:"n_trees,omitempty"`
	MaxDepth   int     `yaml:"max_depth,omitempty"`
	MinSplit   int     `yaml:"min_samples_split,omitempty"`
	MaxWorkers int     `yaml:"max_workers,omitempty"`
	C          float64 `yaml:"c,omitempty"`
	MaxIter    int     `yaml:"max_iter,omitempty"`
	K          int     `yaml:"-"`
	NInit      int     `yaml:"n_init,omitempty"`
	Seed       int64   `yaml:"-"`
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case AlgorithmForest:
		if config.NTrees <= 0 {
			config.NTrees = 30
		}
		if config.MinSplit <= 0 {
			config.MinSplit = 2
		}
		if config.MaxWorkers <= 0 {
			config.MaxWorkers = 5
		}
		return NewRandomForest(config.NTrees, config.MaxDepth, config.MinSplit, config.MaxWorkers, config.Seed), nil

	case AlgorithmSVM:
		return NewOneVsRestSVM(config.C, config.MaxIter), nil

	case AlgorithmLogistic:
		return NewLogisticRegression(config.C, config.MaxIter), nil

	case AlgorithmKMeans:
		if config.K <= 0 {
			return nil, fmt.Errorf("kmeans requires a positive cluster count, got %d", config.K)
		}
		return NewKMeans(config.K, config.MaxIter, config.NInit, config.Seed), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func DefaultConfig(algorithm string) ModelConfig {
	config := ModelConfig{Algorithm: algorithm}

	switch algorithm {
	case AlgorithmForest:
		config.NTrees = 30
		config.MinSplit = 2
		config.MaxWorkers = 5
	case AlgorithmSVM:
		config.C = 1.0
		config.MaxIter = 1000
	case AlgorithmLogistic:
		config.C = 1.0
		config.MaxIter = 100
	case AlgorithmKMeans:
		config.MaxIter = 300
		config.NInit = 10
	}

	return config
}
