package evaluation

import (
	"math"

	"github.com/montanaflynn/stats"
)

// AUCAccumulator collects one AUC per class per trial. It is append-only.
type AUCAccumulator struct {
	classes []int
	scores  map[int][]float64
}

func NewAUCAccumulator(classes []int) *AUCAccumulator {
	scores := make(map[int][]float64, len(classes))
	for _, class := range classes {
		scores[class] = []float64{}
	}
	return &AUCAccumulator{
		classes: append([]int(nil), classes...),
		scores:  scores,
	}
}

// Add records value for class and reports whether it was kept. NaN and values outside
// [0,1] are dropped, as are unknown classes.
func (a *AUCAccumulator) Add(class int, value float64) bool {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return false
	}
	if _, ok := a.scores[class]; !ok {
		return false
	}
	a.scores[class] = append(a.scores[class], value)
	return true
}

func (a *AUCAccumulator) Classes() []int {
	return a.classes
}

func (a *AUCAccumulator) Scores(class int) []float64 {
	return append([]float64(nil), a.scores[class]...)
}

func (a *AUCAccumulator) Count(class int) int {
	return len(a.scores[class])
}

// Mean is taken over the trials that produced a value for class; ok is false if none did.
func (a *AUCAccumulator) Mean(class int) (float64, bool) {
	values := a.scores[class]
	if len(values) == 0 {
		return math.NaN(), false
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return math.NaN(), false
	}
	return mean, true
}

// Pair names two members of the agreement scan, in member order.
type Pair struct {
	First  string
	Second string
}

func (p Pair) String() string {
	return p.First + "," + p.Second
}

// Pairs lists every unordered pair of names, i<j, in the given order.
func Pairs(names []string) []Pair {
	var pairs []Pair
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pairs = append(pairs, Pair{First: names[i], Second: names[j]})
		}
	}
	return pairs
}

// AgreementAccumulator keeps a running ARI sum per pair and the number of trials executed.
type AgreementAccumulator struct {
	pairs  []Pair
	sums   map[Pair]float64
	trials int
}

func NewAgreementAccumulator(pairs []Pair) *AgreementAccumulator {
	sums := make(map[Pair]float64, len(pairs))
	for _, p := range pairs {
		sums[p] = 0
	}
	return &AgreementAccumulator{pairs: pairs, sums: sums}
}

func (a *AgreementAccumulator) Add(p Pair, score float64) {
	a.sums[p] += score
}

// EndTrial marks one completed trial; the count is the divisor of Mean.
func (a *AgreementAccumulator) EndTrial() {
	a.trials++
}

func (a *AgreementAccumulator) Trials() int {
	return a.trials
}

func (a *AgreementAccumulator) Pairs() []Pair {
	return a.pairs
}

func (a *AgreementAccumulator) Sum(p Pair) float64 {
	return a.sums[p]
}

func (a *AgreementAccumulator) Mean(p Pair) float64 {
	if a.trials == 0 {
		return math.NaN()
	}
	return a.sums[p] / float64(a.trials)
}
