package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/exporter"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/infrastructure"
)

const ordersCSV = `Type,Days for shipping (real),Days for shipment (scheduled),Delivery Status,Late_delivery_risk,Category Name,Customer Email,Customer Fname,Customer Lname,Customer Password,Customer Segment,Market,Order Region,Order Item Discount,Order Item Quantity,Sales,Order Profit Per Order,Product Image,Shipping Mode,order date (DateOrders),shipping date (DateOrders)
DEBIT,3,4,Advance shipping,0,Cleats,XXXXXXXXX,Cally,Holloway,XXXXXXXXX,Consumer,Pacific Asia,Southeast Asia,13.11,1,327.75,91.25,http://images.example/1.jpg,Standard Class,1/31/2018 22:56,2/3/2018 22:56
TRANSFER,5,4,Late delivery,1,Fishing,XXXXXXXXX,Irene,Luna,XXXXXXXXX,Consumer,Pacific Asia,South Asia,16.39,1,299.98,-249.09,http://images.example/2.jpg,Standard Class,1/13/2018 12:27,1/18/2018 12:27
CASH,4,4,Shipping on time,0,Cleats,XXXXXXXXX,Gillian,Maldonado,XXXXXXXXX,Home Office,LATAM,Central America,18.03,2,0,50,http://images.example/3.jpg,Second Class,1/13/2018 12:06,1/17/2018 12:06
DEBIT,3,4,Advance shipping,0,Women's Apparel,XXXXXXXXX,Tana,Tate,XXXXXXXXX,Corporate,Europe,Western Europe,22.94,5,129.99,22.86,http://images.example/4.jpg,First Class,2/10/2018 11:45,2/13/2018 11:45
PAYMENT,2,1,Late delivery,1,Fishing,XXXXXXXXX,Orli,Hendricks,XXXXXXXXX,Consumer,USCA,West of USA,29.5,4,399.98,134.21,http://images.example/5.jpg,First Class,2/11/2018 11:24,2/13/2018 11:24
TRANSFER,6,4,Late delivery,1,Cleats,XXXXXXXXX,Kimberly,Flowers,XXXXXXXXX,Consumer,Africa,North Africa,32.78,1,59.99,18.58,http://images.example/6.jpg,Standard Class,3/3/2018 11:03,3/9/2018 11:03
DEBIT,2,2,Shipping on time,0,Cardio Equipment,XXXXXXXXX,Constance,Terrell,XXXXXXXXX,Corporate,Europe,Northern Europe,0,3,250,95.18,http://images.example/7.jpg,Second Class,3/10/2018 10:42,3/12/2018 10:42
CASH,1,0,Late delivery,1,Fishing,XXXXXXXXX,Erica,Stevens,XXXXXXXXX,Home Office,LATAM,South America,7.5,2,1500,68.43,http://images.example/8.jpg,Same Day,3/17/2018 10:21,3/18/2018 10:21
CASH,1,0,Late delivery,1,Fishing,XXXXXXXXX,Erica,Stevens,XXXXXXXXX,Home Office,LATAM,South America,7.5,2,1500,68.43,http://images.example/8.jpg,Same Day,3/17/2018 10:21,3/18/2018 10:21
`

const testConfig = `logging:
  level: debug
  format: json
  output: both
  file_path: dataco.log
charts:
  enabled: true
  dpi: 50
  format: png
  concurrency: 2
telemetry:
  service_name: dataco-test
  trace_exporter: stdout
  metrics_enabled: true
`

func setupRun(t *testing.T, config string) (options, string) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	dir := t.TempDir()
	input := filepath.Join(dir, "DataCoSupplyChainDataset.csv")
	require.NoError(t, os.WriteFile(input, []byte(ordersCSV), 0644))
	cfgFile := filepath.Join(dir, "dataco.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(config), 0644))

	return options{InputFile: input, OutDir: filepath.Join(dir, "out"), ConfigFile: cfgFile}, dir
}

func TestRun_EndToEnd(t *testing.T) {
	opts, _ := setupRun(t, testConfig)
	var spans bytes.Buffer

	res, err := run(context.Background(), opts, &spans)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 8, res.Rows)
	assert.Len(t, res.Charts, 7)

	for _, path := range []string{
		res.Paths.CleanedCSV,
		res.Paths.FeaturesCSV,
		res.Paths.ModelData,
		res.Paths.CleaningReport,
		res.Paths.MetricsFile,
		res.Paths.GetLogPath("dataco.log"),
	} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Positive(t, info.Size(), path)
	}

	cleaned, err := os.ReadFile(res.Paths.CleanedCSV)
	require.NoError(t, err)
	assert.NotContains(t, string(cleaned), "customer_email")
	assert.Contains(t, string(cleaned), "profit_margin_pct")

	features, err := os.ReadFile(res.Paths.FeaturesCSV)
	require.NoError(t, err)
	assert.Contains(t, string(features), "order_value_bucket")
	assert.Contains(t, string(features), "negative_profit")

	records, err := exporter.NewArrowWriter(nil).ReadFile(res.Paths.ModelData)
	require.NoError(t, err)
	require.Len(t, records, 1)
	defer records[0].Release()
	assert.EqualValues(t, 8, records[0].NumRows())
	// Ten configured features plus the target.
	assert.EqualValues(t, 11, records[0].NumCols())

	book, err := excelize.OpenFile(res.Paths.CleaningReport)
	require.NoError(t, err)
	defer book.Close()
	assert.Contains(t, book.GetSheetList(), exporter.SheetEncodings)

	metrics, err := os.ReadFile(res.Paths.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "pipeline_rows_loaded")
	assert.Contains(t, string(metrics), "charts_rendered")

	assert.Contains(t, spans.String(), "remove_duplicates")
	assert.Contains(t, spans.String(), "feature_engineering")

	logs, err := os.ReadFile(res.Paths.GetLogPath("dataco.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logs), res.RunID)
	assert.Contains(t, string(logs), "Run complete")
}

func TestRun_ChartsDisabledByFlag(t *testing.T) {
	opts, _ := setupRun(t, testConfig)
	off := false
	opts.Charts = &off

	res, err := run(context.Background(), opts, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, res.Charts)

	entries, err := os.ReadDir(res.Paths.ChartsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(opts *options, dir string)
		wantType errors.ErrorType
	}{
		{
			name: "missing input",
			mutate: func(opts *options, dir string) {
				opts.InputFile = filepath.Join(dir, "absent.csv")
			},
			wantType: errors.ErrTypeNotFound,
		},
		{
			name: "unsupported input format",
			mutate: func(opts *options, dir string) {
				opts.InputFile = filepath.Join(dir, "dataco.yaml")
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "no input configured",
			mutate: func(opts *options, dir string) {
				opts.InputFile = ""
			},
			wantType: errors.ErrTypeConfig,
		},
		{
			name: "missing config file",
			mutate: func(opts *options, dir string) {
				opts.ConfigFile = filepath.Join(dir, "absent.yaml")
			},
			wantType: errors.ErrTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, dir := setupRun(t, testConfig)
			tt.mutate(&opts, dir)

			_, err := run(context.Background(), opts, &bytes.Buffer{})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}
