package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mohdazh1/CMSE491-Semester-Project/internal/preprocessing"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrDataFormat    = errors.New("malformed data")
)

// Schema names the label column and the first and last header of each feature block.
// Blocks are inclusive runs of adjacent columns.
type Schema struct {
	LabelColumn     string `yaml:"label_column"`
	MicrobiomeFirst string `yaml:"microbiome_first"`
	MicrobiomeLast  string `yaml:"microbiome_last"`
	ClinicalFirst   string `yaml:"clinical_first"`
	ClinicalLast    string `yaml:"clinical_last"`
}

func DefaultSchema() Schema {
	return Schema{
		LabelColumn:     "Health",
		MicrobiomeFirst: "Bacteroidetes",
		MicrobiomeLast:  "Virus",
		ClinicalFirst:   "No Symptoms",
		ClinicalLast:    "Fever",
	}
}

// Dataset is the model-ready matrix: clinical columns first, then transformed microbiome
// columns. Classes holds the class names by encoded label.
type Dataset struct {
	X        [][]float64
	Y        []int
	Features []string
	Classes  []string
	Source   string

	ClinicalColumns   []string
	MicrobiomeColumns []string
	ClinicalKinds     []ColumnKind
}

func (d *Dataset) ClassLabels() []int {
	labels := make([]int, len(d.Classes))
	for i := range labels {
		labels[i] = i
	}
	return labels
}

type CSVReader struct {
	filename string
	schema   Schema
}

func NewCSVReader(filename string, schema Schema) *CSVReader {
	return &CSVReader{filename: filename, schema: schema}
}

func (cr *CSVReader) LoadData() (*Dataset, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadDataset(file, cr.schema, cr.filename)
}

func ReadDataset(r io.Reader, schema Schema, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataFormat, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%w: insufficient data in file", ErrDataFormat)
	}

	headers := records[0]
	rows := records[1:]

	labelIdx, err := columnIndex(headers, schema.LabelColumn)
	if err != nil {
		return nil, err
	}
	microStart, microEnd, err := columnRange(headers, schema.MicrobiomeFirst, schema.MicrobiomeLast)
	if err != nil {
		return nil, err
	}
	clinStart, clinEnd, err := columnRange(headers, schema.ClinicalFirst, schema.ClinicalLast)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(rows))
	for i, record := range rows {
		labels[i] = record[labelIdx]
	}
	encoder := preprocessing.NewLabelEncoder()
	y, err := encoder.FitTransform(labels)
	if err != nil {
		return nil, err
	}

	clinical := make([][]float64, clinEnd-clinStart)
	kinds := make([]ColumnKind, clinEnd-clinStart)
	cells := make([]string, len(rows))
	for c := clinStart; c < clinEnd; c++ {
		for i, record := range rows {
			cells[i] = record[c]
		}
		values, kind, err := ConvertClinicalColumn(headers[c], cells)
		if err != nil {
			return nil, err
		}
		clinical[c-clinStart] = values
		kinds[c-clinStart] = kind
	}

	abundance := make([][]float64, len(rows))
	for i, record := range rows {
		abundance[i] = make([]float64, microEnd-microStart)
		for c := microStart; c < microEnd; c++ {
			v, err := ParseAbundance(record[c])
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", headers[c], i+1, err)
			}
			abundance[i][c-microStart] = v
		}
	}
	microbiome := preprocessing.MicrobiomeTransform(abundance)

	X := make([][]float64, len(rows))
	for i := range rows {
		row := make([]float64, 0, len(clinical)+len(microbiome[i]))
		for _, column := range clinical {
			row = append(row, column[i])
		}
		X[i] = append(row, microbiome[i]...)
	}

	clinicalColumns := append([]string(nil), headers[clinStart:clinEnd]...)
	microbiomeColumns := append([]string(nil), headers[microStart:microEnd]...)

	return &Dataset{
		X:                 X,
		Y:                 y,
		Features:          append(append([]string(nil), clinicalColumns...), microbiomeColumns...),
		Classes:           encoder.Classes(),
		Source:            source,
		ClinicalColumns:   clinicalColumns,
		MicrobiomeColumns: microbiomeColumns,
		ClinicalKinds:     kinds,
	}, nil
}

func columnIndex(headers []string, name string) (int, error) {
	for i, h := range headers {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
}

// columnRange returns the half-open index range covering first through last.
func columnRange(headers []string, first, last string) (int, int, error) {
	start, err := columnIndex(headers, first)
	if err != nil {
		return 0, 0, err
	}
	end, err := columnIndex(headers, last)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("%w: column %q comes after %q", ErrDataFormat, first, last)
	}
	return start, end + 1, nil
}
