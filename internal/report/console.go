package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/mohdazh1/CMSE491-Semester-Project/internal/evaluation"
	"github.com/shopspring/decimal"
)

// Printer writes the human-facing run report.
type Printer struct {
	out io.Writer

	green  func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
}

func NewPrinter(out io.Writer, useColor bool) *Printer {
	palette := []*color.Color{
		color.New(color.FgGreen),
		color.New(color.FgYellow),
		color.New(color.FgCyan),
	}
	for _, c := range palette {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &Printer{
		out:    out,
		green:  palette[0].SprintFunc(),
		yellow: palette[1].SprintFunc(),
		cyan:   palette[2].SprintFunc(),
	}
}

// Banner boxes msg in '#' characters.
func (p *Printer) Banner(msg string) {
	border := strings.Repeat("#", len(msg)+2)
	fmt.Fprintln(p.out, p.cyan(border))
	fmt.Fprintln(p.out, p.cyan("#"+msg+"#"))
	fmt.Fprintln(p.out, p.cyan(border))
}

func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) ConfusionMatrix(cm [][]int) {
	fmt.Fprintln(p.out, "Confusion matrix, without normalization")
	fmt.Fprintln(p.out, FormatMatrix(cm))
}

// FormatMatrix renders cm as a bracketed grid with right-aligned cells.
func FormatMatrix(cm [][]int) string {
	width := 1
	for _, row := range cm {
		for _, v := range row {
			if w := len(fmt.Sprint(v)); w > width {
				width = w
			}
		}
	}

	var b strings.Builder
	b.WriteString("[")
	for i, row := range cm {
		if i > 0 {
			b.WriteString("\n ")
		}
		b.WriteString("[")
		for j, v := range row {
			if j > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%*d", width, v)
		}
		b.WriteString("]")
	}
	b.WriteString("]")
	return b.String()
}

func (p *Printer) ClassificationReport(m *evaluation.ClassificationMetrics, names []string) {
	fmt.Fprint(p.out, FormatClassificationReport(m, names))
}

// FormatClassificationReport lays out per-class precision, recall, F1 and support followed
// by accuracy, macro and weighted averages, two decimals each.
func FormatClassificationReport(m *evaluation.ClassificationMetrics, names []string) string {
	labels := make([]string, len(m.Classes))
	for i, class := range m.Classes {
		labels[i] = fmt.Sprint(class)
		if class >= 0 && class < len(names) {
			labels[i] = names[class]
		}
	}

	width := len("weighted avg")
	for _, l := range labels {
		if len(l) > width {
			width = len(l)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for i, class := range m.Classes {
		cm := m.PerClassMetrics[class]
		fmt.Fprintf(&b, "%*s  %9.2f %9.2f %9.2f %9d\n", width, labels[i], cm.Precision, cm.Recall, cm.F1Score, cm.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.2f %9d\n", width, "accuracy", "", "", m.Accuracy, m.NumSamples)
	fmt.Fprintf(&b, "%*s  %9.2f %9.2f %9.2f %9d\n", width, "macro avg", m.MacroPrecision, m.MacroRecall, m.MacroF1, m.NumSamples)
	fmt.Fprintf(&b, "%*s  %9.2f %9.2f %9.2f %9d\n", width, "weighted avg", m.WeightedPrecision, m.WeightedRecall, m.WeightedF1, m.NumSamples)
	return b.String()
}

// AUCSummary prints the per-class mean AUC after trials; a class that never had a defined
// AUC prints as nan.
func (p *Printer) AUCSummary(trials int, acc *evaluation.AUCAccumulator, names []string) {
	fmt.Fprintf(p.out, "\n%s\n", p.yellow(fmt.Sprintf("After %d Trials:", trials)))
	for _, class := range acc.Classes() {
		mean, _ := acc.Mean(class)
		fmt.Fprintf(p.out, "AUC %s: %s\n", className(class, names), p.green(Round4(mean)))
	}
}

func (p *Printer) AgreementResult(k int, means []PairScore) {
	fmt.Fprintf(p.out, "Result for K = %d\n", k)
	for _, pm := range means {
		fmt.Fprintf(p.out, "%s: %s\n", pm.Pair, p.green(Round4(pm.Mean)))
	}
	fmt.Fprintln(p.out)
}

// PairScore is a named agreement mean.
type PairScore struct {
	Pair string
	Mean float64
}

// Round4 formats v rounded to four decimal places without trailing zeros.
func Round4(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v).Round(4).String()
}

func className(class int, names []string) string {
	if class >= 0 && class < len(names) {
		return names[class]
	}
	return fmt.Sprint(class)
}
