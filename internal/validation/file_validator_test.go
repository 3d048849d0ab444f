package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  errors.ErrorType
	}{
		{
			name: "csv dataset",
			setupFunc: func(t *testing.T) string {
				return writeTestFile(t, "DataCoSupplyChainDataset.csv", "Order Id\n1\n")
			},
		},
		{
			name: "uppercase xlsx extension",
			setupFunc: func(t *testing.T) string {
				return writeTestFile(t, "orders.XLSX", "not really a workbook")
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantType: errors.ErrTypeNotFound,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				return writeTestFile(t, "empty.csv", "")
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				return writeTestFile(t, "orders.json", "{}")
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return writeTestFile(t, "~$orders.xlsx", "lock")
			},
			wantType: errors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			err := NewFileValidator(logger).ValidateInputFile(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateInputFileLogs(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := writeTestFile(t, "orders.csv", "a\n1\n")

	require.NoError(t, NewFileValidator(logger).ValidateInputFile(path))
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Input file validated")
	testutil.AssertNoErrors(t, handler)
	testutil.AssertLogAttr(t, handler, "extension", ".csv")
	testutil.AssertLogAttr(t, handler, "component", "validation")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data", "processed")
		require.NoError(t, v.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		_, err = os.Stat(filepath.Join(dir, ".write_test"))
		assert.True(t, os.IsNotExist(err), "probe file must be removed")
	})

	t.Run("path below a file", func(t *testing.T) {
		file := writeTestFile(t, "blocker", "x")
		err := v.ValidateOutputDirectory(filepath.Join(file, "charts"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
	})
}

func TestFileValidator_ValidateOutputFiles(t *testing.T) {
	base := t.TempDir()
	v := NewFileValidator(nil)

	err := v.ValidateOutputFiles(
		filepath.Join(base, "processed", "cleaned.csv"),
		filepath.Join(base, "processed", "model_data.arrow"),
		"",
		filepath.Join(base, "reports", "cleaning_report.xlsx"),
	)
	require.NoError(t, err)

	for _, dir := range []string{"processed", "reports"} {
		info, err := os.Stat(filepath.Join(base, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
