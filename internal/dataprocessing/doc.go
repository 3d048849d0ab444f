// Package dataprocessing implements the cleaning pipeline for the DataCo supply-chain
// order dataset.
//
// # Steps
//
// The pipeline applies a fixed sequence of transformations to one loaded table:
//
//  1. ParseFile: read the raw CSV (Latin-1 by default) or xlsx workbook
//  2. StandardizeColumns: lowercase, underscored column names
//  3. DropRedundantColumns: remove PII and placeholder columns
//  4. ConvertDateColumns: parse order and shipping dates, invalid values become null
//  5. HandleMissingValues: audit nulls per column without changing data
//  6. RemoveDuplicates: drop exact duplicate rows, keeping the first
//  7. AddDerivedFeatures: shipping delay, order month/year/weekday, profit margin
//
// Every step after loading is total: a step whose source columns are absent is
// skipped. Only loading returns errors.
//
// # Usage
//
//	cleaner := dataprocessing.NewCleaner(logger, cfg.Pipeline, tel)
//	table, report, err := cleaner.RunFullCleaningPipeline(ctx, "data/raw/DataCoSupplyChainDataset.csv")
//
// The returned CleaningReport carries the diagnostics of every step and is written
// to the Excel cleaning report by the exporter package.
package dataprocessing
