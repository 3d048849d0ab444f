package features

import (
	"fmt"
	"sort"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

// NullLabel is the class a null cell is encoded as.
const NullLabel = "nan"

// LabelEncoder maps the distinct text values of one column to integer codes.
// Codes are positions in the sorted class list, so they are only stable for one fit.
type LabelEncoder struct {
	Column  string
	Classes []string
	index   map[string]int
}

// FitLabelEncoder learns the classes of values.
func FitLabelEncoder(column string, values []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	le := &LabelEncoder{Column: column, Classes: classes, index: make(map[string]int, len(classes))}
	for i, c := range classes {
		le.index[c] = i
	}
	return le
}

// Transform returns the code of every value; an unseen value is an error.
func (le *LabelEncoder) Transform(values []string) ([]int, error) {
	codes := make([]int, len(values))
	for i, v := range values {
		code, ok := le.index[v]
		if !ok {
			return nil, fmt.Errorf("column %q: unseen label %q", le.Column, v)
		}
		codes[i] = code
	}
	return codes, nil
}

// InverseTransform maps codes back to their labels.
func (le *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	labels := make([]string, len(codes))
	for i, c := range codes {
		if c < 0 || c >= len(le.Classes) {
			return nil, fmt.Errorf("column %q: code %d out of range [0,%d)", le.Column, c, len(le.Classes))
		}
		labels[i] = le.Classes[c]
	}
	return labels, nil
}

// EncodeCategoricalFeatures label-encodes each listed column that is present, replacing
// it with an Int column of codes. Nulls are encoded as NullLabel. The returned map holds
// the fitted encoder per encoded column.
func EncodeCategoricalFeatures(t *frame.Table, columns []string) (*frame.Table, map[string]*LabelEncoder, error) {
	encoders := make(map[string]*LabelEncoder, len(columns))
	for _, name := range columns {
		c, err := t.Col(name)
		if err != nil {
			continue
		}

		labels := columnLabels(c)
		le := FitLabelEncoder(name, labels)
		codes, err := le.Transform(labels)
		if err != nil {
			return nil, nil, err
		}

		encoded := frame.NewColumn(name, frame.Int, len(codes))
		for i, code := range codes {
			encoded.SetFloat(i, float64(code))
		}
		if t, err = t.WithColumn(encoded); err != nil {
			return nil, nil, err
		}
		encoders[name] = le
	}
	return t, encoders, nil
}

// columnLabels renders every cell as text, nulls as NullLabel.
func columnLabels(c *frame.Column) []string {
	labels := make([]string, c.Len())
	for i := range labels {
		if c.IsNull(i) {
			labels[i] = NullLabel
		} else {
			labels[i] = c.Format(i)
		}
	}
	return labels
}
