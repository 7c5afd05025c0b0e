package preprocessing

import (
	"fmt"
	"sort"
)

// LabelEncoder maps class names to 0..C-1 in sorted name order, so the same labels
// always produce the same codes.
type LabelEncoder struct {
	ClassToInt map[string]int
	IntToClass map[int]string
	IsFitted   bool
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{
		ClassToInt: make(map[string]int),
		IntToClass: make(map[int]string),
		IsFitted:   false,
	}
}

func (le *LabelEncoder) Fit(labels []string) {
	le.ClassToInt = make(map[string]int)
	le.IntToClass = make(map[int]string)

	uniqueLabels := make(map[string]bool)
	for _, label := range labels {
		uniqueLabels[label] = true
	}

	names := make([]string, 0, len(uniqueLabels))
	for label := range uniqueLabels {
		names = append(names, label)
	}
	sort.Strings(names)

	for idx, label := range names {
		le.ClassToInt[label] = idx
		le.IntToClass[idx] = label
	}

	le.IsFitted = true
}

func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before transform")
	}

	result := make([]int, len(labels))
	for i, label := range labels {
		if val, ok := le.ClassToInt[label]; ok {
			result[i] = val
		} else {
			return nil, fmt.Errorf("unknown label: %s", label)
		}
	}

	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	le.Fit(labels)
	return le.Transform(labels)
}

// Classes returns the class names indexed by code.
func (le *LabelEncoder) Classes() []string {
	names := make([]string, len(le.IntToClass))
	for idx, label := range le.IntToClass {
		names[idx] = label
	}
	return names
}
