package experiment

import (
	"context"
	"fmt"
	"sort"

	"github.com/mohdazh1/CMSE491-Semester-Project/internal/evaluation"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/models"
	"go.uber.org/zap"
)

// Member is one model taking part in the agreement scan. New receives the current K;
// members other than the clusterer ignore it.
type Member struct {
	Name string
	New  func(k int, seed int64) (models.Model, error)
}

type PairMean struct {
	Pair string  `yaml:"pair"`
	Mean float64 `yaml:"mean"`
}

type AgreementResult struct {
	K      int        `yaml:"k"`
	Trials int        `yaml:"trials"`
	Means  []PairMean `yaml:"means"`
}

type Scanner struct {
	Trials  int
	Members []Member

	splitter *evaluation.TrainTestSplitter
	logger   *zap.Logger
}

func NewScanner(trials int, members []Member, splitter *evaluation.TrainTestSplitter, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if splitter == nil {
		splitter = evaluation.NewTrainTestSplitter(0.25, nil)
	}
	return &Scanner{
		Trials:   trials,
		Members:  members,
		splitter: splitter,
		logger:   logger,
	}
}

// DefaultMembers builds Log, RFC, KMeans and Lin from the configured model settings.
func DefaultMembers(cfg *Config) ([]Member, error) {
	member := func(name, algorithm string) (Member, error) {
		mc, err := cfg.ModelConfig(algorithm)
		if err != nil {
			return Member{}, err
		}
		return Member{
			Name: name,
			New: func(k int, seed int64) (models.Model, error) {
				c := mc
				c.K = k
				c.Seed = seed
				return models.CreateModel(c)
			},
		}, nil
	}

	var members []Member
	for _, m := range []struct{ name, algorithm string }{
		{"Log", models.AlgorithmLogistic},
		{"RFC", models.AlgorithmForest},
		{"KMeans", models.AlgorithmKMeans},
		{"Lin", models.AlgorithmSVM},
	} {
		built, err := member(m.name, m.algorithm)
		if err != nil {
			return nil, err
		}
		members = append(members, built)
	}
	return members, nil
}

// Scan runs Trials trials for every K in ascending order. Within a trial all members fit
// the same training rows and predict the same test rows.
func (s *Scanner) Scan(ctx context.Context, X [][]float64, y []int, ks []int) ([]AgreementResult, error) {
	if s.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", s.Trials)
	}
	if len(s.Members) < 2 {
		return nil, fmt.Errorf("agreement needs at least two members, got %d", len(s.Members))
	}

	names := make([]string, len(s.Members))
	for i, m := range s.Members {
		names[i] = m.Name
	}
	pairs := evaluation.Pairs(names)

	sorted := append([]int(nil), ks...)
	sort.Ints(sorted)

	results := make([]AgreementResult, 0, len(sorted))
	for _, k := range sorted {
		acc := evaluation.NewAgreementAccumulator(pairs)

		for trial := 0; trial < s.Trials; trial++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := s.runTrial(acc, X, y, k); err != nil {
				return nil, fmt.Errorf("k=%d trial %d: %w", k, trial, err)
			}
		}

		result := AgreementResult{K: k, Trials: acc.Trials()}
		for _, p := range acc.Pairs() {
			result.Means = append(result.Means, PairMean{Pair: p.String(), Mean: acc.Mean(p)})
		}
		results = append(results, result)

		s.logger.Info("agreement scan finished",
			zap.Int("k", k),
			zap.Int("trials", acc.Trials()))
	}

	return results, nil
}

func (s *Scanner) runTrial(acc *evaluation.AgreementAccumulator, X [][]float64, y []int, k int) error {
	split, err := s.splitter.Split(X, y)
	if err != nil {
		return err
	}

	predictions := make(map[string][]int, len(s.Members))
	for _, m := range s.Members {
		model, err := m.New(k, s.splitter.Int63())
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", m.Name, err)
		}
		if err := model.Fit(split.XTrain, split.YTrain); err != nil {
			return fmt.Errorf("failed to fit %s: %w", m.Name, err)
		}
		predictions[m.Name] = model.Predict(split.XTest)
	}

	for _, p := range acc.Pairs() {
		score, err := evaluation.AdjustedRandIndex(predictions[p.First], predictions[p.Second])
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		acc.Add(p, score)
	}
	acc.EndTrial()

	return nil
}
