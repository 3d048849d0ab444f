package exporter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

// formatCell renders one cell for CSV output. Float cells always carry a decimal
// point so integral values such as 0 are written as 0.0.
func formatCell(c *frame.Column, i int) string {
	if c.Kind() != frame.Float {
		return c.Format(i)
	}
	v, ok := c.Float(i)
	if !ok {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		s += ".0"
	}
	return s
}

// formatFloat formats a float64 value with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value
func formatInt(i int) string {
	return strconv.Itoa(i)
}
