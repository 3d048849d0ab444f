package visualization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

// CorrelationMatrix returns the Pearson correlation of every pair of numeric columns of t,
// using only the rows where both cells are present. Pairs with fewer than two such rows or
// a constant side are NaN; the diagonal is 1.
func CorrelationMatrix(t *frame.Table) ([]string, *mat.SymDense, error) {
	var cols []*frame.Column
	for _, c := range t.Columns() {
		if c.Kind().IsNumeric() {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("no numeric columns to correlate")
	}

	names := make([]string, len(cols))
	corr := mat.NewSymDense(len(cols), nil)
	for i, ci := range cols {
		names[i] = ci.Name()
		corr.SetSym(i, i, 1)
		for j := i + 1; j < len(cols); j++ {
			corr.SetSym(i, j, pairwiseCorrelation(ci, cols[j]))
		}
	}
	return names, corr, nil
}

func pairwiseCorrelation(a, b *frame.Column) float64 {
	var x, y []float64
	for i := 0; i < a.Len(); i++ {
		av, aok := a.Float(i)
		bv, bok := b.Float(i)
		if aok && bok {
			x = append(x, av)
			y = append(y, bv)
		}
	}
	if len(x) < 2 || constant(x) || constant(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

func constant(vs []float64) bool {
	for _, v := range vs[1:] {
		if v != vs[0] {
			return false
		}
	}
	return true
}

// lowerTriangle presents a correlation matrix as a heat map grid with the first variable
// on the top row. Cells on or above the diagonal are NaN so only the lower triangle is drawn.
type lowerTriangle struct {
	corr *mat.SymDense
}

func (g lowerTriangle) Dims() (c, r int) {
	n := g.corr.SymmetricDim()
	return n, n
}

func (g lowerTriangle) Z(c, r int) float64 {
	n := g.corr.SymmetricDim()
	row := n - 1 - r
	if c >= row {
		return math.NaN()
	}
	return g.corr.At(row, c)
}

func (g lowerTriangle) X(c int) float64 { return float64(c) }
func (g lowerTriangle) Y(r int) float64 { return float64(r) }
