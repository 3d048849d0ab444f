package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/config"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/infrastructure"
)

// Cleaner runs the cleaning pipeline, logging each step's diagnostics and recording
// a span and metrics per step.
type Cleaner struct {
	logger *slog.Logger
	tel    *infrastructure.Telemetry
	opts   ReadOptions
}

// NewCleaner creates a cleaner. A nil logger uses slog.Default and nil telemetry records nothing.
func NewCleaner(logger *slog.Logger, cfg config.PipelineConfig, tel *infrastructure.Telemetry) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry()
	}

	opts := ReadOptions{Encoding: cfg.Encoding, Delimiter: ','}
	if cfg.Delimiter != "" {
		opts.Delimiter = []rune(cfg.Delimiter)[0]
	}

	return &Cleaner{
		logger: logger.With(slog.String("component", "cleaning")),
		tel:    tel,
		opts:   opts,
	}
}

// LoadRawData reads the raw dataset. This is the only step that can fail.
func (c *Cleaner) LoadRawData(ctx context.Context, path string) (t *frame.Table, err error) {
	ctx, done := c.tel.StartStep(ctx, "load_raw_data")
	defer func() { done(err) }()

	t, err = ParseFile(path, c.opts)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to load dataset",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	c.tel.Metrics.RowsLoaded.Add(ctx, int64(t.Nrow()))
	c.logger.InfoContext(ctx, "Loaded dataset",
		slog.String("path", path),
		slog.Int("rows", t.Nrow()),
		slog.Int("columns", t.Ncol()))
	return t, nil
}

// RunFullCleaningPipeline loads path and applies every cleaning step in order.
func (c *Cleaner) RunFullCleaningPipeline(ctx context.Context, path string) (*frame.Table, *CleaningReport, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	started := time.Now()

	c.logger.InfoContext(ctx, "Running data cleaning pipeline", slog.String("path", path))

	raw, err := c.LoadRawData(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	t, report := c.Clean(ctx, raw)
	report.SourceFile = path
	report.StartedAt = started
	report.Duration = time.Since(started)

	c.logger.InfoContext(ctx, "Pipeline complete",
		slog.Int("rows", t.Nrow()),
		slog.Int("columns", t.Ncol()),
		slog.Duration("duration", report.Duration))
	return t, report, nil
}

// Clean applies the cleaning steps to an already loaded table. It never fails: steps
// whose source columns are absent are skipped.
func (c *Cleaner) Clean(ctx context.Context, raw *frame.Table) (*frame.Table, *CleaningReport) {
	report := &CleaningReport{
		RunID:        infrastructure.GetRunID(ctx),
		StartedAt:    time.Now(),
		InputRows:    raw.Nrow(),
		InputColumns: raw.Ncol(),
	}

	t := c.step(ctx, "standardize_columns", func(ctx context.Context) *frame.Table {
		return StandardizeColumns(raw)
	})

	t = c.step(ctx, "drop_redundant_columns", func(ctx context.Context) *frame.Table {
		out, dropped := DropRedundantColumns(t)
		report.DroppedColumns = dropped
		c.tel.Metrics.ColumnsDropped.Add(ctx, int64(len(dropped)))
		c.logger.InfoContext(ctx, "Dropped redundant columns",
			slog.Int("count", len(dropped)),
			slog.Any("columns", dropped))
		return out
	})

	t = c.step(ctx, "convert_date_columns", func(ctx context.Context) *frame.Table {
		out, conversions := ConvertDateColumns(t)
		report.DateConversions = conversions
		for _, conv := range conversions {
			c.tel.Metrics.DatesCoerced.Add(ctx, int64(conv.Coerced))
			c.logger.InfoContext(ctx, "Converted column to datetime",
				slog.String("column", conv.Column),
				slog.Int("parsed", conv.Parsed),
				slog.Int("coerced_to_null", conv.Coerced))
		}
		return out
	})

	t = c.step(ctx, "handle_missing_values", func(ctx context.Context) *frame.Table {
		out, missing := HandleMissingValues(t)
		report.MissingValues = missing
		c.tel.Metrics.MissingCells.Add(ctx, int64(report.MissingCells()))
		if len(missing) == 0 {
			c.logger.InfoContext(ctx, "No missing values found")
		}
		for _, m := range missing {
			c.logger.InfoContext(ctx, "Column has missing values",
				slog.String("column", m.Column),
				slog.Int("missing_count", m.Count),
				slog.Float64("missing_pct", m.Percent))
		}
		return out
	})

	t = c.step(ctx, "remove_duplicates", func(ctx context.Context) *frame.Table {
		out, stats := RemoveDuplicates(t)
		report.Duplicates = stats
		c.tel.Metrics.DuplicatesRemoved.Add(ctx, int64(stats.Removed))
		c.logger.InfoContext(ctx, "Removed duplicate rows",
			slog.Int("removed", stats.Removed),
			slog.Float64("removed_pct", stats.Percent))
		return out
	})

	t = c.step(ctx, "add_derived_features", func(ctx context.Context) *frame.Table {
		out, added := AddDerivedFeatures(t)
		report.DerivedColumns = added
		c.logger.InfoContext(ctx, "Added derived features", slog.Any("columns", added))
		return out
	})

	report.OutputRows = t.Nrow()
	report.OutputColumns = t.Ncol()
	c.tel.Metrics.RowsOutput.Add(ctx, int64(t.Nrow()))

	return t, report
}

// step runs fn inside a traced pipeline step.
func (c *Cleaner) step(ctx context.Context, name string, fn func(context.Context) *frame.Table) *frame.Table {
	ctx, done := c.tel.StartStep(ctx, name)
	out := fn(ctx)
	done(nil)
	return out
}
