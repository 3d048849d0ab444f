package dataprocessing

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/pkg/contracts/domain"
)

// dateLayouts are tried in order when parsing order and shipping dates.
var dateLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"1/2/06 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC3339,
}

var columnNameReplacer = strings.NewReplacer(" ", "_", "(", "", ")", "", ".", "")

// StandardizeColumnName trims and lowercases name, turns spaces into underscores and
// strips parentheses and periods. Applying it twice gives the same result as once.
func StandardizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSpace(columnNameReplacer.Replace(name))
}

// StandardizeColumns renames every column with StandardizeColumnName.
func StandardizeColumns(t *frame.Table) *frame.Table {
	return t.Rename(StandardizeColumnName)
}

// DropRedundantColumns removes the PII and placeholder columns that are present and
// returns their names.
func DropRedundantColumns(t *frame.Table) (*frame.Table, []string) {
	dropped := make([]string, 0, len(domain.RedundantColumns))
	for _, name := range domain.RedundantColumns {
		if t.Has(name) {
			dropped = append(dropped, name)
		}
	}
	return t.Drop(dropped...), dropped
}

// ParseDate parses a date or date-time cell. ok is false when no layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ConvertDateColumns parses the order and shipping date columns into Time columns.
// Values that cannot be parsed become null.
func ConvertDateColumns(t *frame.Table) (*frame.Table, []DateConversion) {
	var conversions []DateConversion
	for _, name := range domain.DateColumns {
		src, err := t.Col(name)
		if err != nil || src.Kind() == frame.Time {
			continue
		}

		dst := frame.NewColumn(name, frame.Time, src.Len())
		conv := DateConversion{Column: name}
		for i := 0; i < src.Len(); i++ {
			if src.IsNull(i) {
				continue
			}
			if ts, ok := ParseDate(src.Format(i)); ok {
				dst.SetTime(i, ts)
				conv.Parsed++
			} else {
				conv.Coerced++
			}
		}

		// replacing a same-length column cannot fail
		t, _ = t.WithColumn(dst)
		conversions = append(conversions, conv)
	}
	return t, conversions
}

// HandleMissingValues audits null cells. The table is returned unchanged; the report
// lists only columns with nulls, highest percentage first.
func HandleMissingValues(t *frame.Table) (*frame.Table, []MissingValue) {
	var report []MissingValue
	for _, c := range t.Columns() {
		n := c.NullCount()
		if n == 0 {
			continue
		}
		report = append(report, MissingValue{
			Column:  c.Name(),
			Count:   n,
			Percent: round2(float64(n) / float64(t.Nrow()) * 100),
		})
	}
	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Percent > report[j].Percent
	})
	return t, report
}

// RemoveDuplicates drops rows that repeat an earlier row in every column.
func RemoveDuplicates(t *frame.Table) (*frame.Table, DuplicateStats) {
	seen := make(map[string]struct{}, t.Nrow())
	out := t.Filter(func(row int) bool {
		key := t.RowKey(row)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})

	stats := DuplicateStats{InputRows: t.Nrow(), Removed: t.Nrow() - out.Nrow()}
	if stats.InputRows > 0 {
		stats.Percent = round2(float64(stats.Removed) / float64(stats.InputRows) * 100)
	}
	return out, stats
}

// AddDerivedFeatures appends shipping delay, order calendar fields and profit margin
// wherever their source columns exist, and returns the names of the columns added.
func AddDerivedFeatures(t *frame.Table) (*frame.Table, []string) {
	var added []string
	add := func(c *frame.Column) {
		if next, err := t.WithColumn(c); err == nil {
			t = next
			added = append(added, c.Name())
		}
	}

	if delay := shippingDelay(t); delay != nil {
		add(delay)
	}

	if orderDate, err := t.Col(domain.ColOrderDate); err == nil && orderDate.Kind() == frame.Time {
		month := frame.NewColumn(domain.ColOrderMonth, frame.Period, t.Nrow())
		year := frame.NewColumn(domain.ColOrderYear, frame.Int, t.Nrow())
		weekday := frame.NewColumn(domain.ColOrderDayOfWeek, frame.String, t.Nrow())
		for i := 0; i < t.Nrow(); i++ {
			ts, ok := orderDate.Time(i)
			if !ok {
				continue
			}
			month.SetTime(i, ts)
			year.SetFloat(i, float64(ts.Year()))
			weekday.SetString(i, ts.Weekday().String())
		}
		add(month)
		add(year)
		add(weekday)
	}

	if margin := profitMargin(t); margin != nil {
		add(margin)
	}

	return t, added
}

func shippingDelay(t *frame.Table) *frame.Column {
	actual, err := t.Col(domain.ColDaysForShippingReal)
	if err != nil || !actual.Kind().IsNumeric() {
		return nil
	}
	scheduled, err := t.Col(domain.ColDaysForShipmentSched)
	if err != nil || !scheduled.Kind().IsNumeric() {
		return nil
	}

	kind := frame.Float
	if actual.Kind() == frame.Int && scheduled.Kind() == frame.Int {
		kind = frame.Int
	}
	delay := frame.NewColumn(domain.ColShippingDelayDays, kind, t.Nrow())
	for i := 0; i < t.Nrow(); i++ {
		r, ok1 := actual.Float(i)
		s, ok2 := scheduled.Float(i)
		if ok1 && ok2 {
			delay.SetFloat(i, r-s)
		}
	}
	return delay
}

func profitMargin(t *frame.Table) *frame.Column {
	profit, err := t.Col(domain.ColOrderProfitPerOrder)
	if err != nil || !profit.Kind().IsNumeric() {
		return nil
	}
	sales, err := t.Col(domain.ColSales)
	if err != nil || !sales.Kind().IsNumeric() {
		return nil
	}

	margin := frame.NewColumn(domain.ColProfitMarginPct, frame.Float, t.Nrow())
	for i := 0; i < t.Nrow(); i++ {
		s, ok := sales.Float(i)
		if !ok {
			continue
		}
		if s == 0 {
			margin.SetFloat(i, 0)
			continue
		}
		if p, ok := profit.Float(i); ok {
			margin.SetFloat(i, round2(p/s*100))
		}
	}
	return margin
}

// round2 rounds to two decimals, halves to even.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
