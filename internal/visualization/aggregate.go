package visualization

import (
	"math"
	"sort"
	"time"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

// group is one category of a grouped aggregate.
type group struct {
	Label string
	Value float64
}

// valueCounts counts the non-null cells of c per distinct value, most frequent first.
// Ties keep the order in which the values first appear.
func valueCounts(c *frame.Column) []group {
	index := make(map[string]int)
	var groups []group
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		label := c.Format(i)
		j, ok := index[label]
		if !ok {
			j = len(groups)
			index[label] = j
			groups = append(groups, group{Label: label})
		}
		groups[j].Value++
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Value > groups[b].Value })
	return groups
}

// groupBy aggregates the non-null values of val per non-null key, in first-seen key order.
// agg receives the collected values of one key.
func groupBy(key, val *frame.Column, agg func([]float64) float64) []group {
	index := make(map[string]int)
	var labels []string
	var values [][]float64
	for i := 0; i < key.Len(); i++ {
		v, ok := val.Float(i)
		if key.IsNull(i) || !ok {
			continue
		}
		label := key.Format(i)
		j, seen := index[label]
		if !seen {
			j = len(labels)
			index[label] = j
			labels = append(labels, label)
			values = append(values, nil)
		}
		values[j] = append(values[j], v)
	}

	groups := make([]group, len(labels))
	for j, label := range labels {
		groups[j] = group{Label: label, Value: agg(values[j])}
	}
	return groups
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	return sum(vs) / float64(len(vs))
}

func sum(vs []float64) float64 {
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total
}

// monthlyCounts counts rows per month of a Period or Time column, in calendar order.
func monthlyCounts(c *frame.Column) ([]time.Time, []float64) {
	counts := make(map[time.Time]float64)
	for i := 0; i < c.Len(); i++ {
		ts, ok := c.Time(i)
		if !ok {
			continue
		}
		counts[time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)]++
	}

	months := make([]time.Time, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Slice(months, func(a, b int) bool { return months[a].Before(months[b]) })

	values := make([]float64, len(months))
	for i, m := range months {
		values[i] = counts[m]
	}
	return months, values
}

// validFloats returns the non-null values of a numeric column.
func validFloats(c *frame.Column) []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

func labelsOf(groups []group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label
	}
	return out
}
