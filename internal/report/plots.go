package report

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// confusionGrid exposes a confusion matrix as a heat map grid. Grid row 0 is drawn at the
// bottom, so rows are flipped to keep the first true class on top.
type confusionGrid struct {
	cm [][]int
}

func (g confusionGrid) Dims() (c, r int) { return len(g.cm[0]), len(g.cm) }
func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.cm[len(g.cm)-1-r][c])
}
func (g confusionGrid) X(c int) float64 { return float64(c) }
func (g confusionGrid) Y(r int) float64 { return float64(r) }

// SaveConfusionMatrix renders cm as an annotated heat map PNG at path.
func SaveConfusionMatrix(path, title string, cm [][]int, names []string) error {
	if len(cm) == 0 || len(cm[0]) == 0 {
		return fmt.Errorf("empty confusion matrix")
	}
	if len(names) != len(cm) {
		return fmt.Errorf("confusion matrix has %d rows but %d class names", len(cm), len(names))
	}

	blues, err := brewer.GetPalette(brewer.TypeAny, "Blues", 9)
	if err != nil {
		return fmt.Errorf("failed to load palette: %w", err)
	}

	grid := confusionGrid{cm: cm}
	heat := plotter.NewHeatMap(grid, blues)

	maxCount := 0
	for _, row := range cm {
		for _, v := range row {
			if v > maxCount {
				maxCount = v
			}
		}
	}
	heat.Min = 0
	heat.Max = float64(maxCount)
	if heat.Max == heat.Min {
		heat.Max = heat.Min + 1
	}

	var cells plotter.XYLabels
	cols, rows := grid.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells.XYs = append(cells.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			cells.Labels = append(cells.Labels, fmt.Sprint(int(grid.Z(c, r))))
		}
	}
	labels, err := plotter.NewLabels(cells)
	if err != nil {
		return fmt.Errorf("failed to build cell labels: %w", err)
	}
	threshold := float64(maxCount) / 2
	for i := range labels.TextStyle {
		style := &labels.TextStyle[i]
		style.XAlign = text.XCenter
		style.YAlign = text.YCenter
		style.Color = color.Black
		c, r := i%cols, i/cols
		if grid.Z(c, r) > threshold {
			style.Color = color.White
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted label"
	p.Y.Label.Text = "True label"
	p.Add(heat, labels)
	p.NominalX(names...)

	reversed := make([]string, len(names))
	for i, name := range names {
		reversed[len(names)-1-i] = name
	}
	p.NominalY(reversed...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight

	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// SaveImportanceChart draws importances sorted in descending order as a bar chart.
func SaveImportanceChart(path string, features []string, importances []float64) error {
	if len(features) != len(importances) {
		return fmt.Errorf("%d features but %d importances", len(features), len(importances))
	}
	if len(features) == 0 {
		return fmt.Errorf("no importances to plot")
	}

	order := make([]int, len(importances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return importances[order[a]] > importances[order[b]]
	})

	values := make(plotter.Values, len(order))
	names := make([]string, len(order))
	for i, idx := range order {
		values[i] = importances[idx]
		names[i] = features[idx]
	}

	width := vg.Points(math.Max(1, 600/float64(len(values))))
	bars, err := plotter.NewBarChart(values, width)
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.LineStyle.Width = 0
	bars.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	p := plot.New()
	p.Title.Text = "Feature Importances"
	p.Title.TextStyle.Font.Size = vg.Points(23)
	p.Y.Label.Text = "Feature Importances"
	p.X.Label.Text = "Feature"
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	if err := p.Save(13*vg.Inch, 7*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
