package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

// ModelData is the numeric input of a downstream model.
type ModelData struct {
	X            *mat.Dense // one row per order, one column per feature
	FeatureNames []string
	Target       []float64 // NaN where the target is null
	TargetName   string
	Scaler       *StandardScaler // nil when the features were not scaled
}

// Rows returns the number of samples
func (md *ModelData) Rows() int {
	r, _ := md.X.Dims()
	return r
}

// StandardScaler centers each feature on its mean and divides by its population
// standard deviation. A constant feature keeps a scale of 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// FitStandardScaler learns the per-column mean and scale of x.
func FitStandardScaler(x mat.Matrix) *StandardScaler {
	_, c := x.Dims()
	s := &StandardScaler{Mean: make([]float64, c), Scale: make([]float64, c)}
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j], s.Scale[j] = mean, std
	}
	return s
}

// Transform returns a scaled copy of x.
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != len(s.Mean) {
		return nil, fmt.Errorf("scaler fitted on %d features, got %d", len(s.Mean), c)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}

// InverseTransform undoes Transform.
func (s *StandardScaler) InverseTransform(x mat.Matrix) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != len(s.Mean) {
		return nil, fmt.Errorf("scaler fitted on %d features, got %d", len(s.Mean), c)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	}, x)
	return out, nil
}

// PrepareModelData selects the feature and target columns, fills null features with
// the column median and, when scale is set, standardizes the features. Every feature
// and the target must exist and be numeric; encode categorical columns first.
func PrepareModelData(t *frame.Table, target string, featureCols []string, scale bool) (*ModelData, error) {
	if len(featureCols) == 0 {
		return nil, errors.NewValidationError("no feature columns selected")
	}
	if t.Nrow() == 0 {
		return nil, errors.NewValidationError("table has no rows")
	}

	y, err := numericColumn(t, target)
	if err != nil {
		return nil, err
	}

	x := mat.NewDense(t.Nrow(), len(featureCols), nil)
	for j, name := range featureCols {
		c, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		values := c.Floats()
		fill := Median(values)
		for i, v := range values {
			if math.IsNaN(v) {
				if math.IsNaN(fill) {
					return nil, errors.NewSchemaError(name, fmt.Errorf("no values to fill nulls from"))
				}
				v = fill
			}
			x.Set(i, j, v)
		}
	}

	md := &ModelData{
		X:            x,
		FeatureNames: append([]string(nil), featureCols...),
		Target:       y.Floats(),
		TargetName:   target,
	}

	if scale {
		md.Scaler = FitStandardScaler(x)
		if md.X, err = md.Scaler.Transform(x); err != nil {
			return nil, err
		}
	}

	return md, nil
}
