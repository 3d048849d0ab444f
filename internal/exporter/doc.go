// Package exporter writes the outputs of a cleaning and feature run.
//
// CSVWriter streams a table to CSV with an optional UTF-8 BOM for Excel.
//
// ExcelReport writes the cleaning diagnostics and the fitted label encodings to a
// workbook with the sheets Summary, Missing Values, Dropped Columns and Encodings.
//
// ArrowWriter writes model matrices and whole tables as Arrow IPC files that
// columnar tools can load without parsing.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter(logger, true)
//	err := csvWriter.WriteTable(paths.CleanedCSV, cleaned)
//
//	arrowWriter := exporter.NewArrowWriter(logger)
//	err = arrowWriter.WriteModelData(paths.ModelData, modelData)
package exporter
