package dataprocessing

import (
	"time"
)

// MissingValue is one row of the missing-value audit.
type MissingValue struct {
	Column  string  `json:"column"`
	Count   int     `json:"missing_count"`
	Percent float64 `json:"missing_pct"`
}

// DuplicateStats summarizes duplicate removal.
type DuplicateStats struct {
	InputRows int     `json:"input_rows"`
	Removed   int     `json:"removed"`
	Percent   float64 `json:"removed_pct"`
}

// DateConversion counts the outcome of parsing one date column.
type DateConversion struct {
	Column  string `json:"column"`
	Parsed  int    `json:"parsed"`
	Coerced int    `json:"coerced_to_null"`
}

// CleaningReport collects the diagnostics of every cleaning step for one run.
type CleaningReport struct {
	RunID      string        `json:"run_id"`
	SourceFile string        `json:"source_file"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`

	InputRows     int `json:"input_rows"`
	InputColumns  int `json:"input_columns"`
	OutputRows    int `json:"output_rows"`
	OutputColumns int `json:"output_columns"`

	DroppedColumns  []string         `json:"dropped_columns"`
	DateConversions []DateConversion `json:"date_conversions"`
	MissingValues   []MissingValue   `json:"missing_values"`
	Duplicates      DuplicateStats   `json:"duplicates"`
	DerivedColumns  []string         `json:"derived_columns"`
}

// MissingCells returns the total number of null cells found by the audit.
func (r *CleaningReport) MissingCells() int {
	total := 0
	for _, m := range r.MissingValues {
		total += m.Count
	}
	return total
}
