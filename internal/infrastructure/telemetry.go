package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/config"
)

// InstrumentationName identifies tracers and meters created by this module
const InstrumentationName = "github.com/Abiyes-Stack/dataco-supply-chain-analysis"

// Telemetry bundles the tracer, meter and pipeline instruments of one batch run.
type Telemetry struct {
	Tracer  trace.Tracer
	Meter   metric.Meter
	Metrics *PipelineMetrics

	registry  *promclient.Registry
	shutdowns []func(context.Context) error
	closed    atomic.Bool
}

// ErrTelemetryShutdown is returned by WriteMetrics once the providers are shut down
var ErrTelemetryShutdown = errors.New("telemetry already shut down")

// PipelineMetrics holds the instruments recorded by the cleaning, feature and chart stages
type PipelineMetrics struct {
	RowsLoaded        metric.Int64Counter
	RowsOutput        metric.Int64Counter
	ColumnsDropped    metric.Int64Counter
	DuplicatesRemoved metric.Int64Counter
	MissingCells      metric.Int64Counter
	DatesCoerced      metric.Int64Counter
	ChartsRendered    metric.Int64Counter
	StepErrors        metric.Int64Counter
	StepDuration      metric.Float64Histogram
}

// NewTelemetry sets up tracing and metrics according to cfg.
// Spans go to traceOut when the stdout exporter is selected (os.Stdout if nil).
func NewTelemetry(cfg config.TelemetryConfig, traceOut io.Writer, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	tel := &Telemetry{}

	switch cfg.TraceExporter {
	case "stdout":
		if traceOut == nil {
			traceOut = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(traceOut))
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		// Export each span as it ends.
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithResource(res),
		)
		tel.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(config.AppVersion))
		tel.shutdowns = append(tel.shutdowns, tp.Shutdown)
	case "none", "":
		tel.Tracer = tracenoop.NewTracerProvider().Tracer(InstrumentationName)
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if cfg.MetricsEnabled {
		tel.registry = promclient.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(tel.registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		tel.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(config.AppVersion))
		tel.shutdowns = append(tel.shutdowns, mp.Shutdown)
	} else {
		tel.Meter = metricnoop.NewMeterProvider().Meter(InstrumentationName)
	}

	metrics, err := CreatePipelineMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	tel.Metrics = metrics

	logger.Info("Telemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))

	return tel, nil
}

// NoopTelemetry returns telemetry that records nothing.
func NoopTelemetry() *Telemetry {
	meter := metricnoop.NewMeterProvider().Meter(InstrumentationName)
	// noop instruments never fail to create
	metrics, _ := CreatePipelineMetrics(meter)
	return &Telemetry{
		Tracer:  tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:   meter,
		Metrics: metrics,
	}
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.RowsLoaded, "pipeline_rows_loaded", "Rows read from the raw dataset"},
		{&m.RowsOutput, "pipeline_rows_output", "Rows in the cleaned table"},
		{&m.ColumnsDropped, "pipeline_columns_dropped", "Redundant columns removed"},
		{&m.DuplicatesRemoved, "pipeline_duplicates_removed", "Exact duplicate rows removed"},
		{&m.MissingCells, "pipeline_missing_cells", "Null cells found by the missing-value audit"},
		{&m.DatesCoerced, "pipeline_dates_coerced", "Date cells that failed to parse and became null"},
		{&m.ChartsRendered, "charts_rendered", "Charts written to disk"},
		{&m.StepErrors, "pipeline_step_errors", "Steps that returned an error"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.StepDuration, err = meter.Float64Histogram(
		"pipeline_step_duration_seconds",
		metric.WithDescription("Duration of each pipeline step in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// StartStep opens a span for a named step. The returned function ends the span
// and records the step duration; pass the step's error (or nil).
func (t *Telemetry) StartStep(ctx context.Context, step string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := t.Tracer.Start(ctx, step, trace.WithAttributes(attribute.String("step", step)))

	return ctx, func(err error) {
		attrs := metric.WithAttributes(attribute.String("step", step))
		if err != nil {
			span.RecordError(err)
			t.Metrics.StepErrors.Add(ctx, 1, attrs)
		}
		t.Metrics.StepDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		span.End()
	}
}

// WriteMetrics writes all collected metrics to path in the Prometheus text format,
// suitable for the node exporter textfile collector. It is a no-op when metrics are disabled
// and must be called before Shutdown.
func (t *Telemetry) WriteMetrics(path string) error {
	if t.registry == nil {
		return nil
	}
	if t.closed.Load() {
		return ErrTelemetryShutdown
	}
	families, err := t.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	if len(families) == 0 {
		return fmt.Errorf("no metrics collected")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return promclient.WriteToTextfile(path, t.registry)
}

// Shutdown flushes and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.closed.Store(true)
	var errs []error
	for _, fn := range t.shutdowns {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
