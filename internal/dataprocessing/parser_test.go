package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestParseFile_Latin1CSV(t *testing.T) {
	// 0xE9 is "é" in ISO-8859-1 and an invalid byte in UTF-8
	path := writeFile(t, "raw.csv", []byte("Customer City,Sales\nBogot\xe1,10.5\nSan Jos\xe9,\n"))

	tbl, err := ParseFile(path, ReadOptions{Encoding: "latin-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Nrow())
	city, err := tbl.Col("Customer City")
	require.NoError(t, err)
	assert.Equal(t, "Bogotá", city.Format(0))
	assert.Equal(t, "San José", city.Format(1))

	sales, err := tbl.Col("Sales")
	require.NoError(t, err)
	assert.Equal(t, frame.Float, sales.Kind())
	assert.True(t, sales.IsNull(1))
}

func TestParseFile_EncodingMismatch(t *testing.T) {
	path := writeFile(t, "raw.csv", []byte("city\nSan Jos\xe9\n"))

	_, err := ParseFile(path, ReadOptions{Encoding: "utf-8"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
}

func TestParseFile_UTF8WithBOMAndDelimiter(t *testing.T) {
	path := writeFile(t, "raw.csv", []byte("\xef\xbb\xbfMarket;Sales\nLATAM;3\nEurope;4\n"))

	tbl, err := ParseFile(path, ReadOptions{Encoding: "utf-8", Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"Market", "Sales"}, tbl.Names())
	assert.Equal(t, 2, tbl.Nrow())
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		opts    ReadOptions
		errType errors.ErrorType
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.csv") },
			errType: errors.ErrTypeNotFound,
		},
		{
			name:    "empty file",
			path:    func(t *testing.T) string { return writeFile(t, "empty.csv", nil) },
			errType: errors.ErrTypeParsing,
		},
		{
			name:    "ragged row",
			path:    func(t *testing.T) string { return writeFile(t, "bad.csv", []byte("a,b\n1,2,3\n")) },
			errType: errors.ErrTypeParsing,
		},
		{
			name:    "unknown encoding",
			path:    func(t *testing.T) string { return writeFile(t, "ok.csv", []byte("a\n1\n")) },
			opts:    ReadOptions{Encoding: "ebcdic"},
			errType: errors.ErrTypeConfig,
		},
		{
			name:    "corrupt workbook",
			path:    func(t *testing.T) string { return writeFile(t, "bad.xlsx", []byte("not a zip")) },
			errType: errors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(tt.path(t), tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)
		})
	}
}

func TestParseFile_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Type", "Sales", "Order Region"},
		{"DEBIT", 327.75, "Southeast Asia"},
		{"CASH", 11.5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "DataCoSupplyChainDataset.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := ParseFile(path, ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Type", "Sales", "Order Region"}, tbl.Names())
	assert.Equal(t, 2, tbl.Nrow())

	region, err := tbl.Col("Order Region")
	require.NoError(t, err)
	assert.True(t, region.IsNull(1), "short rows are padded with nulls")

	sales, err := tbl.Col("Sales")
	require.NoError(t, err)
	v, ok := sales.Float(0)
	require.True(t, ok)
	assert.Equal(t, 327.75, v)
}
