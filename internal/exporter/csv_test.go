package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/shared/testutil"
)

// cleanedTable has one column of every kind, each with a null in the last row.
func cleanedTable(t *testing.T) *frame.Table {
	t.Helper()

	orderDate := frame.NewColumn("order_date_dateorders", frame.Time, 3)
	orderDate.SetTime(0, time.Date(2018, 1, 31, 22, 56, 0, 0, time.UTC))
	orderDate.SetTime(1, time.Date(2018, 1, 13, 12, 27, 0, 0, time.UTC))

	month := frame.NewColumn("order_month", frame.Period, 3)
	month.SetTime(0, time.Date(2018, 1, 31, 0, 0, 0, 0, time.UTC))
	month.SetTime(1, time.Date(2018, 1, 13, 0, 0, 0, 0, time.UTC))

	shipping := frame.NewColumn("shipping_delay_days", frame.Int, 3)
	shipping.SetFloat(0, -1)
	shipping.SetFloat(1, 1)

	market := frame.NewColumn("market", frame.String, 3)
	market.SetString(0, "Pacific Asia")
	market.SetString(1, "Europe, West")

	tbl, err := frame.New(
		market,
		frame.NewFloatColumn("profit_margin_pct", []float64{27.84, 0, math.NaN()}),
		shipping,
		orderDate,
		month,
	)
	require.NoError(t, err)
	return tbl
}

func TestCSVWriter_WriteTable(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "processed", "cleaned.csv")

	require.NoError(t, NewCSVWriter(logger, false).WriteTable(path, cleanedTable(t)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"market", "profit_margin_pct", "shipping_delay_days", "order_date_dateorders", "order_month"},
		{"Pacific Asia", "27.84", "-1", "2018-01-31 22:56:00", "2018-01"},
		{"Europe, West", "0.0", "1", "2018-01-13 12:27:00", "2018-01"},
		{"", "", "", "", ""},
	}, records)

	assert.True(t, handler.ContainsMessage("Wrote CSV file"))
	assert.True(t, handler.ContainsAttr("rows", int64(3)))
}

func TestCSVWriter_BOMPrefix(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		bom  bool
	}{
		{"with BOM", true},
		{"without BOM", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".csv")
			require.NoError(t, NewCSVWriter(nil, tt.bom).WriteTable(path, cleanedTable(t)))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.bom, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
		})
	}
}

func TestCSVWriter_WriteTableError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewCSVWriter(nil, false).WriteTable(filepath.Join(blocker, "out.csv"), cleanedTable(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")
	w := NewCSVWriter(nil, false)

	stream, err := w.CreateStreamWriter(path, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1", "x"}))
	require.NoError(t, stream.WriteRecord([]string{"2", "y,z"}))
	require.NoError(t, stream.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,x\n2,\"y,z\"\n", string(data))
}

func TestFormatCell(t *testing.T) {
	c := frame.NewFloatColumn("v", []float64{0, 1.5, -3, 1e21, math.Inf(1), math.NaN()})
	want := []string{"0.0", "1.5", "-3.0", "1000000000000000000000.0", "+Inf", ""}
	for i, w := range want {
		assert.Equal(t, w, formatCell(c, i), "row %d", i)
	}

	ints := frame.NewIntColumn("n", []int64{0, 42})
	assert.Equal(t, "0", formatCell(ints, 0))
	assert.Equal(t, "42", formatCell(ints, 1))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "20.00", formatFloat(20))
	assert.Equal(t, "7", formatInt(7))
}
