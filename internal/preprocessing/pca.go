package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PCA projects rows onto the leading principal axes of the centered training matrix.
type PCA struct {
	NComponents       int
	Mean              []float64
	Components        *mat.Dense
	ExplainedVariance []float64
	IsFitted          bool
}

func NewPCA(nComponents int) *PCA {
	return &PCA{NComponents: nComponents}
}

func (p *PCA) Fit(X [][]float64) error {
	n := len(X)
	if n == 0 {
		return fmt.Errorf("empty dataset")
	}
	d := len(X[0])
	k := p.NComponents
	if k <= 0 || k > n || k > d {
		return fmt.Errorf("cannot extract %d components from a %dx%d matrix", k, n, d)
	}

	p.Mean = make([]float64, d)
	for _, row := range X {
		if len(row) != d {
			return fmt.Errorf("inconsistent feature count: expected %d, got %d", d, len(row))
		}
		for j, v := range row {
			p.Mean[j] += v
		}
	}
	for j := range p.Mean {
		p.Mean[j] /= float64(n)
	}

	centered := p.center(X)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return fmt.Errorf("singular value decomposition failed")
	}

	var v mat.Dense
	svd.VTo(&v)
	values := svd.Values(nil)

	p.Components = mat.NewDense(k, d, nil)
	p.ExplainedVariance = make([]float64, k)
	for c := 0; c < k; c++ {
		axis := mat.Col(nil, c, &v)
		flipSign(axis)
		p.Components.SetRow(c, axis)
		if n > 1 {
			p.ExplainedVariance[c] = values[c] * values[c] / float64(n-1)
		}
	}

	p.IsFitted = true
	return nil
}

func (p *PCA) Transform(X [][]float64) ([][]float64, error) {
	if !p.IsFitted {
		return nil, fmt.Errorf("PCA must be fitted before transform")
	}
	if len(X) == 0 {
		return [][]float64{}, nil
	}
	for i, row := range X {
		if len(row) != len(p.Mean) {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), len(p.Mean))
		}
	}

	var projected mat.Dense
	projected.Mul(p.center(X), p.Components.T())

	rows, _ := projected.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, &projected)
	}
	return out, nil
}

func (p *PCA) FitTransform(X [][]float64) ([][]float64, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

func (p *PCA) center(X [][]float64) *mat.Dense {
	d := len(p.Mean)
	centered := mat.NewDense(len(X), d, nil)
	for i, row := range X {
		for j, v := range row {
			centered.Set(i, j, v-p.Mean[j])
		}
	}
	return centered
}

// flipSign makes the largest-magnitude entry of axis positive.
func flipSign(axis []float64) {
	best := 0
	for j, v := range axis {
		if math.Abs(v) > math.Abs(axis[best]) {
			best = j
		}
	}
	if axis[best] < 0 {
		for j := range axis {
			axis[j] = -axis[j]
		}
	}
}
