package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/config"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/dataprocessing"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/exporter"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/features"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/infrastructure"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/validation"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/visualization"
)

// options are the command line overrides of the configuration
type options struct {
	InputFile  string
	OutDir     string
	ConfigFile string
	Charts     *bool // nil keeps the configured value
}

// result lists what a run produced
type result struct {
	RunID  string
	Rows   int
	Charts []string
	Paths  *config.Paths
}

func main() {
	inFile := flag.String("in", "", "raw dataset (.csv or .xlsx); relative names are also looked up in data/raw")
	outDir := flag.String("out", "", "base directory for data/ and logs/ (defaults to the configured base_dir)")
	charts := flag.Bool("charts", true, "render the exploratory charts")
	configFile := flag.String("config", "", "YAML configuration file (defaults to dataco.yaml or configs/dataco.yaml)")
	flag.Parse()

	opts := options{InputFile: *inFile, OutDir: *outDir, ConfigFile: *configFile}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "charts" {
			opts.Charts = charts
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("Run failed", "error", err)
		fmt.Fprintf(os.Stderr, "dataco: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run executes one batch: clean, export, chart, engineer features and write the model matrix.
func run(ctx context.Context, opts options, stdout io.Writer) (res *result, err error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}
	if opts.OutDir != "" {
		cfg.Paths.BaseDir = opts.OutDir
	}
	if opts.InputFile != "" {
		cfg.Paths.InputFile = opts.InputFile
	}
	if opts.Charts != nil {
		cfg.Charts.Enabled = *opts.Charts
	}

	paths, err := config.GetPaths(cfg.Paths.BaseDir)
	if err != nil {
		return nil, errors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, errors.NewStorageError("failed to create required directories", err)
	}

	if cfg.Logging.Output != "console" && !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = paths.GetLogPath(filepath.Base(cfg.Logging.FilePath))
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)
	start := time.Now()

	tel, err := infrastructure.NewTelemetry(cfg.Telemetry, stdout, logger)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := tel.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", serr.Error()))
		}
	}()

	if cfg.Paths.InputFile == "" {
		return nil, errors.NewConfigError("no input file: pass -in or set paths.input_file", nil)
	}
	input := paths.ResolveInput(cfg.Paths.InputFile)

	logger.InfoContext(ctx, "Starting DataCo supply-chain run",
		slog.String("input", input),
		slog.String("base_dir", paths.BaseDir),
		slog.Bool("charts", cfg.Charts.Enabled),
		slog.String("version", config.AppVersion))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputFile(input); err != nil {
		return nil, err
	}
	if err := validator.ValidateOutputFiles(paths.CleanedCSV, paths.FeaturesCSV, paths.ModelData,
		paths.CleaningReport, paths.MetricsFile); err != nil {
		return nil, err
	}

	cleaner := dataprocessing.NewCleaner(logger, cfg.Pipeline, tel)
	cleaned, report, err := cleaner.RunFullCleaningPipeline(ctx, input)
	if err != nil {
		return nil, err
	}

	csvWriter := exporter.NewCSVWriter(logger, true)
	if err := csvWriter.WriteTable(paths.CleanedCSV, cleaned); err != nil {
		return nil, err
	}

	res = &result{RunID: runID, Rows: cleaned.Nrow(), Paths: paths}
	if cfg.Charts.Enabled {
		renderer := visualization.NewRenderer(cfg.Charts, logger, tel)
		if res.Charts, err = renderer.RenderAll(ctx, cleaned, paths.ChartsDir); err != nil {
			return nil, err
		}
	}

	featured, encoders, err := buildFeatures(ctx, tel, cleaned, cfg.Features)
	if err != nil {
		return nil, err
	}
	if err := csvWriter.WriteTable(paths.FeaturesCSV, featured); err != nil {
		return nil, err
	}

	md, err := prepareModelData(ctx, logger, featured, cfg.Features)
	if err != nil {
		return nil, err
	}
	if err := exporter.NewArrowWriter(logger).WriteModelData(paths.ModelData, md); err != nil {
		return nil, err
	}

	if err := exporter.NewExcelReport(logger).Write(paths.CleaningReport, report, encoders); err != nil {
		return nil, err
	}

	if cfg.Telemetry.MetricsEnabled {
		if err := tel.WriteMetrics(paths.MetricsFile); err != nil {
			return nil, errors.NewStorageError("failed to write metrics", err)
		}
	}

	logger.InfoContext(ctx, "Run complete",
		slog.Int("rows", cleaned.Nrow()),
		slog.Int("feature_columns", featured.Ncol()),
		slog.Int("charts", len(res.Charts)),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

// buildFeatures label-encodes the categorical columns and adds the delivery and fraud features.
func buildFeatures(ctx context.Context, tel *infrastructure.Telemetry, t *frame.Table, cfg config.FeaturesConfig) (out *frame.Table, encoders map[string]*features.LabelEncoder, err error) {
	_, done := tel.StartStep(ctx, "feature_engineering")
	defer func() { done(err) }()

	if out, encoders, err = features.EncodeCategoricalFeatures(t, cfg.CategoricalColumns); err != nil {
		return nil, nil, err
	}
	if out, err = features.CreateDeliveryPredictionFeatures(out); err != nil {
		return nil, nil, err
	}
	if out, err = features.CreateFraudDetectionFeatures(out); err != nil {
		return nil, nil, err
	}
	return out, encoders, nil
}

// prepareModelData builds the model matrix from the configured features present in t.
func prepareModelData(ctx context.Context, logger *slog.Logger, t *frame.Table, cfg config.FeaturesConfig) (*features.ModelData, error) {
	var present, absent []string
	for _, name := range cfg.FeatureColumns {
		if t.Has(name) {
			present = append(present, name)
		} else {
			absent = append(absent, name)
		}
	}
	if len(absent) > 0 {
		logger.WarnContext(ctx, "Skipping absent feature columns",
			slog.Any("columns", absent))
	}

	md, err := features.PrepareModelData(t, cfg.TargetColumn, present, cfg.Scale)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Prepared model data",
		slog.Int("rows", md.Rows()),
		slog.Int("features", len(md.FeatureNames)),
		slog.String("target", md.TargetName),
		slog.Bool("scaled", md.Scaler != nil))
	return md, nil
}
