package config

// Application constants
const (
	AppName    = "dataco-supply-chain"
	AppVersion = "1.0.0"

	// Directory layout relative to the base directory
	DefaultDataDir      = "data"
	DefaultRawDir       = "data/raw"
	DefaultProcessedDir = "data/processed"
	DefaultReportsDir   = "data/reports"
	DefaultChartsDir    = "data/reports/charts"
	DefaultLogsDir      = "logs"

	// Well-known output files
	CleanedCSVName     = "dataco_cleaned.csv"
	FeaturesCSVName    = "dataco_features.csv"
	CleaningReportName = "cleaning_report.xlsx"
	ModelDataName      = "model_data.arrow"
	MetricsFileName    = "dataco.prom"

	// Chart settings
	DefaultChartDPI = 150
)
