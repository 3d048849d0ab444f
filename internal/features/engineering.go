package features

import (
	"fmt"
	"math"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/pkg/contracts/domain"
)

// Thresholds for the binary features
const (
	BulkOrderQuantity = 3    // quantity above this is a bulk order
	FastShipDays      = 1    // real shipping days at or below this is a fast shipment
	ExtremeMarginQ    = 0.95 // margin above this quantile is extreme
)

// ErrNonUniqueEdges is returned when quantile bucketing produces repeated bin edges.
var ErrNonUniqueEdges = fmt.Errorf("bin edges must be unique")

// QuantileBuckets assigns each value to one of len(labels) equal-frequency buckets.
// Edges are the quantiles of the non-null values; bins are right-closed and the lowest
// edge is included. Nulls stay null.
func QuantileBuckets(name string, values []float64, labels []string) (*frame.Column, []float64, error) {
	sorted := sortedValid(values)
	if len(sorted) == 0 {
		return nil, nil, fmt.Errorf("%s: no values to bucket", name)
	}

	q := len(labels)
	edges := make([]float64, q+1)
	for i := range edges {
		edges[i] = percentileValue(sorted, float64(i)/float64(q))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return nil, edges, fmt.Errorf("%s: %w: %v", name, ErrNonUniqueEdges, edges)
		}
	}

	col := frame.NewColumn(name, frame.String, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		b := 0
		for b < q-1 && v > edges[b+1] {
			b++
		}
		col.SetString(i, labels[b])
	}
	return col, edges, nil
}

// CreateDeliveryPredictionFeatures adds the late-delivery model inputs: sales quartile
// bucket (edges recomputed from t every call), and flags for above-median discount,
// bulk quantity and weekend orders. A missing sales column is an error; the flags are
// skipped when their source columns are absent.
func CreateDeliveryPredictionFeatures(t *frame.Table) (*frame.Table, error) {
	sales, err := numericColumn(t, domain.ColSales)
	if err != nil {
		return nil, err
	}

	bucket, _, err := QuantileBuckets(domain.ColOrderValueBucket, sales.Floats(), domain.OrderValueBuckets)
	if err != nil {
		return nil, errors.NewSchemaError(domain.ColSales, err)
	}
	if t, err = t.WithColumn(bucket); err != nil {
		return nil, err
	}

	if t.Has(domain.ColOrderItemDiscount) {
		discount, err := numericColumn(t, domain.ColOrderItemDiscount)
		if err != nil {
			return nil, err
		}
		median := Median(discount.Floats())
		if t, err = withFlag(t, domain.ColIsHighDiscount, discount, func(v float64) bool { return v > median }); err != nil {
			return nil, err
		}
	}

	if t.Has(domain.ColOrderItemQuantity) {
		quantity, err := numericColumn(t, domain.ColOrderItemQuantity)
		if err != nil {
			return nil, err
		}
		if t, err = withFlag(t, domain.ColIsBulkOrder, quantity, func(v float64) bool { return v > BulkOrderQuantity }); err != nil {
			return nil, err
		}
	}

	if weekday, err := t.Col(domain.ColOrderDayOfWeek); err == nil {
		flag := frame.NewColumn(domain.ColIsWeekendOrder, frame.Int, t.Nrow())
		for i := 0; i < t.Nrow(); i++ {
			day := weekday.Format(i)
			flag.SetFloat(i, boolToFloat(!weekday.IsNull(i) && (day == "Saturday" || day == "Sunday")))
		}
		if t, err = t.WithColumn(flag); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// CreateFraudDetectionFeatures adds flags for margins above the 95th percentile,
// shipments of at most one day and negative profit, each when its source column exists.
func CreateFraudDetectionFeatures(t *frame.Table) (*frame.Table, error) {
	if t.Has(domain.ColProfitMarginPct) {
		margin, err := numericColumn(t, domain.ColProfitMarginPct)
		if err != nil {
			return nil, err
		}
		q95 := Quantile(margin.Floats(), ExtremeMarginQ)
		if t, err = withFlag(t, domain.ColExtremeMargin, margin, func(v float64) bool { return v > q95 }); err != nil {
			return nil, err
		}
	}

	if t.Has(domain.ColDaysForShippingReal) {
		days, err := numericColumn(t, domain.ColDaysForShippingReal)
		if err != nil {
			return nil, err
		}
		if t, err = withFlag(t, domain.ColFastShip, days, func(v float64) bool { return v <= FastShipDays }); err != nil {
			return nil, err
		}
	}

	if t.Has(domain.ColOrderProfitPerOrder) {
		profit, err := numericColumn(t, domain.ColOrderProfitPerOrder)
		if err != nil {
			return nil, err
		}
		if t, err = withFlag(t, domain.ColNegativeProfit, profit, func(v float64) bool { return v < 0 }); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// numericColumn returns the named column, or a schema error when it is absent or not numeric.
func numericColumn(t *frame.Table, name string) (*frame.Column, error) {
	c, err := t.Col(name)
	if err != nil {
		return nil, errors.NewSchemaError(name, err)
	}
	if !c.Kind().IsNumeric() {
		return nil, errors.NewSchemaError(name, fmt.Errorf("%s column is not numeric", c.Kind()))
	}
	return c, nil
}

// withFlag adds an Int 0/1 column; null source cells compare false.
func withFlag(t *frame.Table, name string, src *frame.Column, pred func(float64) bool) (*frame.Table, error) {
	flag := frame.NewColumn(name, frame.Int, src.Len())
	for i := 0; i < src.Len(); i++ {
		v, ok := src.Float(i)
		flag.SetFloat(i, boolToFloat(ok && pred(v)))
	}
	return t.WithColumn(flag)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
