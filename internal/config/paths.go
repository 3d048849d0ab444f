package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every location the batch run reads from or writes to
type Paths struct {
	BaseDir      string
	DataDir      string
	RawDir       string
	ProcessedDir string
	ReportsDir   string
	ChartsDir    string
	LogsDir      string

	// Well-known output files
	CleanedCSV     string
	FeaturesCSV    string
	CleaningReport string
	ModelData      string
	MetricsFile    string
}

// GetPaths resolves the directory layout under baseDir. An empty baseDir means the
// current working directory.
func GetPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		baseDir = "."
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}

	processed := filepath.Join(abs, DefaultProcessedDir)
	reports := filepath.Join(abs, DefaultReportsDir)

	return &Paths{
		BaseDir:      abs,
		DataDir:      filepath.Join(abs, DefaultDataDir),
		RawDir:       filepath.Join(abs, DefaultRawDir),
		ProcessedDir: processed,
		ReportsDir:   reports,
		ChartsDir:    filepath.Join(abs, DefaultChartsDir),
		LogsDir:      filepath.Join(abs, DefaultLogsDir),

		CleanedCSV:     filepath.Join(processed, CleanedCSVName),
		FeaturesCSV:    filepath.Join(processed, FeaturesCSVName),
		CleaningReport: filepath.Join(reports, CleaningReportName),
		ModelData:      filepath.Join(processed, ModelDataName),
		MetricsFile:    filepath.Join(reports, MetricsFileName),
	}, nil
}

// EnsureDirectories creates all output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetRawPath returns the path of an input file in the raw data directory
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// GetChartPath returns the output path of a chart image
func (p *Paths) GetChartPath(name, format string) string {
	return filepath.Join(p.ChartsDir, name+"."+format)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// ResolveInput returns path unchanged when absolute or present relative to the
// working directory, otherwise its location inside the raw data directory.
func (p *Paths) ResolveInput(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return p.GetRawPath(path)
}
