package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/dataprocessing"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/features"
)

// Report sheet names
const (
	SheetSummary        = "Summary"
	SheetMissingValues  = "Missing Values"
	SheetDroppedColumns = "Dropped Columns"
	SheetEncodings      = "Encodings"
)

// ExcelReport writes the cleaning diagnostics of one run as a workbook.
type ExcelReport struct {
	logger *slog.Logger
}

// NewExcelReport creates a report writer
func NewExcelReport(logger *slog.Logger) *ExcelReport {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelReport{logger: logger.With(slog.String("component", "exporter"))}
}

// Write saves report and the fitted label encoders to path. encoders may be nil.
func (e *ExcelReport) Write(path string, report *dataprocessing.CleaningReport, encoders map[string]*features.LabelEncoder) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return errors.NewStorageError("failed to create summary sheet", err)
	}
	for _, name := range []string{SheetMissingValues, SheetDroppedColumns, SheetEncodings} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to create sheet %s", name), err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.NewStorageError("failed to create header style", err)
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summaryRows(report)},
		{SheetMissingValues, missingRows(report)},
		{SheetDroppedColumns, droppedRows(report)},
		{SheetEncodings, encodingRows(encoders)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.rows, header); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write sheet %s", s.name), err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create report directory", err)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save cleaning report", err).WithContext("path", path)
	}

	e.logger.Info("Wrote cleaning report",
		slog.String("file_path", path),
		slog.Int("missing_columns", len(report.MissingValues)),
		slog.Int("encoded_columns", len(encoders)))
	return nil
}

// writeSheet writes rows from A1 down and bolds the first row.
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 24)
}

func summaryRows(r *dataprocessing.CleaningReport) [][]interface{} {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Run ID", r.RunID},
		{"Source File", r.SourceFile},
		{"Started At", r.StartedAt.UTC().Format(time.RFC3339)},
		{"Duration", r.Duration.String()},
		{"Input Rows", r.InputRows},
		{"Input Columns", r.InputColumns},
		{"Output Rows", r.OutputRows},
		{"Output Columns", r.OutputColumns},
		{"Duplicates Removed", r.Duplicates.Removed},
		{"Duplicates (%)", formatFloat(r.Duplicates.Percent)},
		{"Missing Cells", r.MissingCells()},
	}
	for _, d := range r.DateConversions {
		rows = append(rows,
			[]interface{}{"Dates Parsed: " + d.Column, d.Parsed},
			[]interface{}{"Dates Coerced: " + d.Column, d.Coerced})
	}
	for _, c := range r.DerivedColumns {
		rows = append(rows, []interface{}{"Derived Column", c})
	}
	return rows
}

func missingRows(r *dataprocessing.CleaningReport) [][]interface{} {
	rows := [][]interface{}{{"Column", "Missing Count", "Missing (%)"}}
	for _, m := range r.MissingValues {
		rows = append(rows, []interface{}{m.Column, m.Count, m.Percent})
	}
	return rows
}

func droppedRows(r *dataprocessing.CleaningReport) [][]interface{} {
	rows := [][]interface{}{{"Column"}}
	for _, c := range r.DroppedColumns {
		rows = append(rows, []interface{}{c})
	}
	return rows
}

// encodingRows lists every class of every encoder, columns in name order.
func encodingRows(encoders map[string]*features.LabelEncoder) [][]interface{} {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := [][]interface{}{{"Column", "Code", "Label"}}
	for _, name := range names {
		for code, label := range encoders[name].Classes {
			rows = append(rows, []interface{}{name, formatInt(code), label})
		}
	}
	return rows
}
