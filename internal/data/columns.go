package data

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type ColumnKind int

const (
	ColumnNumeric ColumnKind = iota
	ColumnCategorical
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnNumeric:
		return "numeric"
	case ColumnCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// MissingValue is what absent clinical answers become.
const MissingValue = -1.0

// ClassifyColumn reports ColumnNumeric when every cell is missing or parses as a number.
func ClassifyColumn(cells []string) ColumnKind {
	for _, cell := range cells {
		if isMissing(cell) {
			continue
		}
		if _, err := parseNumber(cell); err != nil {
			return ColumnCategorical
		}
	}
	return ColumnNumeric
}

// ConvertClinicalColumn classifies the column and converts it. Missing cells (empty, NaN,
// NA, N/A, null, none) are MissingValue. Other categorical cells keep only their first
// word, lowercased: "yes" is 1, "no" is 0, "missing" is MissingValue, anything else must
// be a number.
func ConvertClinicalColumn(name string, cells []string) ([]float64, ColumnKind, error) {
	kind := ClassifyColumn(cells)
	out := make([]float64, len(cells))

	for i, cell := range cells {
		var (
			v   float64
			err error
		)
		if kind == ColumnNumeric {
			v, err = convertNumericCell(cell)
		} else {
			v, err = convertCategoricalCell(cell)
		}
		if err != nil {
			return nil, kind, fmt.Errorf("%w: column %q row %d: %v", ErrDataFormat, name, i+1, err)
		}
		out[i] = v
	}

	return out, kind, nil
}

// ParseAbundance reads a microbiome cell. Missing cells become NaN so the log transform
// can replace them.
func ParseAbundance(cell string) (float64, error) {
	if isMissing(cell) {
		return math.NaN(), nil
	}
	v, err := parseNumber(cell)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrDataFormat, cell)
	}
	return v, nil
}

func convertNumericCell(cell string) (float64, error) {
	if isMissing(cell) {
		return MissingValue, nil
	}
	return parseNumber(cell)
}

func convertCategoricalCell(cell string) (float64, error) {
	if isMissing(cell) {
		return MissingValue, nil
	}

	token := ""
	if fields := strings.Fields(cell); len(fields) > 0 {
		token = strings.ToLower(fields[0])
	}

	switch token {
	case "", "nan", "missing":
		return MissingValue, nil
	case "no":
		return 0, nil
	case "yes":
		return 1, nil
	}

	v, err := parseNumber(token)
	if err != nil {
		return 0, fmt.Errorf("unrecognized value %q", cell)
	}
	return v, nil
}

func isMissing(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "", "nan", "na", "n/a", "null", "none", "#n/a", "<na>":
		return true
	}
	return false
}

func parseNumber(cell string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(cell))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
