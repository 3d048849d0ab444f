package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	base := t.TempDir()

	paths, err := GetPaths(base)
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data", "raw"), paths.RawDir)
	assert.Equal(t, filepath.Join(base, "data", "processed", CleanedCSVName), paths.CleanedCSV)
	assert.Equal(t, filepath.Join(base, "data", "reports", CleaningReportName), paths.CleaningReport)
	assert.Equal(t, filepath.Join(base, "data", "reports", "charts", "heatmap.svg"), paths.GetChartPath("heatmap", "svg"))
	assert.Equal(t, filepath.Join(base, "logs", "run.log"), paths.GetLogPath("run.log"))
}

func TestGetPaths_EmptyBaseUsesWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	paths, err := GetPaths("")
	require.NoError(t, err)
	assert.Equal(t, wd, paths.BaseDir)
}

func TestPaths_EnsureDirectories(t *testing.T) {
	paths, err := GetPaths(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.RawDir, paths.ProcessedDir, paths.ReportsDir, paths.ChartsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}

func TestPaths_ResolveInput(t *testing.T) {
	base := t.TempDir()
	paths, err := GetPaths(base)
	require.NoError(t, err)

	existing := filepath.Join(base, "orders.csv")
	require.NoError(t, os.WriteFile(existing, []byte("a\n1\n"), 0644))

	assert.Equal(t, existing, paths.ResolveInput(existing))
	assert.Equal(t, "", paths.ResolveInput(""))
	assert.Equal(t, filepath.Join(paths.RawDir, "DataCoSupplyChainDataset.csv"),
		paths.ResolveInput("DataCoSupplyChainDataset.csv"))
}
