package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewTelemetry_StdoutTraceAndMetrics(t *testing.T) {
	var spans bytes.Buffer
	tel, err := NewTelemetry(config.TelemetryConfig{
		ServiceName:    "dataco-test",
		TraceExporter:  "stdout",
		MetricsEnabled: true,
	}, &spans, discardLogger())
	require.NoError(t, err)

	ctx := context.Background()
	stepCtx, done := tel.StartStep(ctx, "load_raw_data")
	tel.Metrics.RowsLoaded.Add(stepCtx, 10)
	done(nil)

	_, failed := tel.StartStep(ctx, "remove_duplicates")
	failed(errors.New("boom"))

	path := filepath.Join(t.TempDir(), "reports", "dataco.prom")
	require.NoError(t, tel.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "pipeline_rows_loaded")
	assert.Contains(t, string(content), "pipeline_step_duration_seconds")
	assert.Contains(t, string(content), "pipeline_step_errors")

	require.NoError(t, tel.Shutdown(ctx))
	assert.Contains(t, spans.String(), "load_raw_data")
	assert.Contains(t, spans.String(), "boom")
}

func TestTelemetry_WriteMetricsAfterShutdown(t *testing.T) {
	tel, err := NewTelemetry(config.TelemetryConfig{
		ServiceName:    "dataco-test",
		TraceExporter:  "none",
		MetricsEnabled: true,
	}, nil, discardLogger())
	require.NoError(t, err)

	tel.Metrics.RowsLoaded.Add(context.Background(), 3)
	require.NoError(t, tel.Shutdown(context.Background()))

	path := filepath.Join(t.TempDir(), "dataco.prom")
	err = tel.WriteMetrics(path)
	assert.ErrorIs(t, err, ErrTelemetryShutdown)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no empty metrics file after shutdown")
}

func TestNewTelemetry_Disabled(t *testing.T) {
	tel, err := NewTelemetry(config.TelemetryConfig{
		ServiceName:   "dataco-test",
		TraceExporter: "none",
	}, nil, discardLogger())
	require.NoError(t, err)

	_, done := tel.StartStep(context.Background(), "noop")
	done(nil)

	path := filepath.Join(t.TempDir(), "dataco.prom")
	require.NoError(t, tel.WriteMetrics(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no metrics file without a registry")
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewTelemetry_UnknownExporter(t *testing.T) {
	_, err := NewTelemetry(config.TelemetryConfig{ServiceName: "x", TraceExporter: "jaeger"}, nil, discardLogger())
	assert.Error(t, err)
}

func TestNoopTelemetry(t *testing.T) {
	tel := NoopTelemetry()
	require.NotNil(t, tel.Metrics)

	ctx, done := tel.StartStep(context.Background(), "step")
	tel.Metrics.ChartsRendered.Add(ctx, 1)
	done(errors.New("ignored"))

	assert.NoError(t, tel.Shutdown(context.Background()))
}
