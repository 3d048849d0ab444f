package dataprocessing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/config"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/infrastructure"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/shared/testutil"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/pkg/contracts/domain"
)

// tenRowDataset has two exact duplicate rows and one zero-sales row with profit 50.
const tenRowDataset = `Order Id,Days for shipping (real),Days for shipment (scheduled),Sales,Order Profit Per Order,order date (DateOrders),shipping date (DateOrders),Customer Email,Customer Password,Customer Fname,Customer Lname,Product Image,Market
1,3,4,327.75,91.25,1/31/2018 22:56,2/3/2018 22:56,XXXXXXXXX,XXXXXXXXX,Cally,Holloway,http://images.example/1.jpg,Pacific Asia
2,5,4,327.75,-249.09,1/13/2018 12:27,1/18/2018 12:27,XXXXXXXXX,XXXXXXXXX,Irene,Luna,http://images.example/2.jpg,Pacific Asia
3,4,4,0,50,1/13/2018 12:06,1/17/2018 12:06,XXXXXXXXX,XXXXXXXXX,Gillian,Maldonado,http://images.example/3.jpg,Pacific Asia
4,3,4,327.75,22.86,1/13/2018 11:45,1/16/2018 11:45,XXXXXXXXX,XXXXXXXXX,Tana,Tate,http://images.example/4.jpg,Pacific Asia
5,2,4,327.75,134.21,1/13/2018 11:24,1/15/2018 11:24,XXXXXXXXX,XXXXXXXXX,Orli,Hendricks,http://images.example/5.jpg,Pacific Asia
6,6,4,327.75,18.58,1/13/2018 11:03,1/19/2018 11:03,XXXXXXXXX,XXXXXXXXX,Kimberly,Flowers,http://images.example/6.jpg,Pacific Asia
7,2,1,327.75,95.18,1/13/2018 10:42,1/15/2018 10:42,XXXXXXXXX,XXXXXXXXX,Constance,Terrell,http://images.example/7.jpg,Pacific Asia
8,2,1,327.75,68.43,1/13/2018 10:21,1/15/2018 10:21,XXXXXXXXX,XXXXXXXXX,Erica,Stevens,http://images.example/8.jpg,Pacific Asia
1,3,4,327.75,91.25,1/31/2018 22:56,2/3/2018 22:56,XXXXXXXXX,XXXXXXXXX,Cally,Holloway,http://images.example/1.jpg,Pacific Asia
2,5,4,327.75,-249.09,1/13/2018 12:27,1/18/2018 12:27,XXXXXXXXX,XXXXXXXXX,Irene,Luna,http://images.example/2.jpg,Pacific Asia
`

func newTestCleaner(t *testing.T) (*Cleaner, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	return NewCleaner(logger, config.Default().Pipeline, infrastructure.NoopTelemetry()), handler
}

func TestNewCleaner_Defaults(t *testing.T) {
	c := NewCleaner(nil, config.PipelineConfig{Encoding: "utf-8", Delimiter: "|"}, nil)
	assert.NotNil(t, c.logger)
	assert.NotNil(t, c.tel)
	assert.Equal(t, '|', c.opts.Delimiter)

	c = NewCleaner(nil, config.PipelineConfig{}, nil)
	assert.Equal(t, ',', c.opts.Delimiter)
}

func TestRunFullCleaningPipeline_TenRowScenario(t *testing.T) {
	path := writeFile(t, "DataCoSupplyChainDataset.csv", []byte(tenRowDataset))
	cleaner, handler := newTestCleaner(t)

	ctx := infrastructure.WithRunID(context.Background(), "run-e2e")
	tbl, report, err := cleaner.RunFullCleaningPipeline(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, 8, tbl.Nrow())
	for _, pii := range domain.RedundantColumns {
		assert.False(t, tbl.Has(pii), pii)
	}

	// zero-sales row has a zero margin
	id, err := tbl.Col("order_id")
	require.NoError(t, err)
	margin, err := tbl.Col(domain.ColProfitMarginPct)
	require.NoError(t, err)
	for i := 0; i < tbl.Nrow(); i++ {
		if v, _ := id.Float(i); v == 3 {
			m, ok := margin.Float(i)
			require.True(t, ok)
			assert.Equal(t, 0.0, m)
		}
	}

	delay, err := tbl.Col(domain.ColShippingDelayDays)
	require.NoError(t, err)
	d, _ := delay.Float(0)
	assert.Equal(t, -1.0, d)

	assert.Equal(t, "run-e2e", report.RunID)
	assert.Equal(t, path, report.SourceFile)
	assert.Equal(t, 10, report.InputRows)
	assert.Equal(t, 13, report.InputColumns)
	assert.Equal(t, 8, report.OutputRows)
	assert.Equal(t, tbl.Ncol(), report.OutputColumns)
	assert.ElementsMatch(t, domain.RedundantColumns, report.DroppedColumns)
	assert.Equal(t, DuplicateStats{InputRows: 10, Removed: 2, Percent: 20}, report.Duplicates)
	assert.Empty(t, report.MissingValues)
	assert.Equal(t, []string{
		domain.ColShippingDelayDays,
		domain.ColOrderMonth,
		domain.ColOrderYear,
		domain.ColOrderDayOfWeek,
		domain.ColProfitMarginPct,
	}, report.DerivedColumns)
	require.Len(t, report.DateConversions, 2)
	assert.Equal(t, 0, report.DateConversions[0].Coerced)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Loaded dataset")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "No missing values found")
	testutil.AssertLogAttr(t, handler, "removed", int64(2))
	testutil.AssertLogAttr(t, handler, "component", "cleaning")
	testutil.AssertNoErrors(t, handler)
}

func TestRunFullCleaningPipeline_MissingFile(t *testing.T) {
	cleaner, handler := newTestCleaner(t)

	_, _, err := cleaner.RunFullCleaningPipeline(context.Background(), "does/not/exist.csv")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	testutil.AssertLogContains(t, handler, slog.LevelError, "failed to load dataset")
}

func TestClean_ReportsMissingValuesAndSkipsAbsentSources(t *testing.T) {
	cleaner, handler := newTestCleaner(t)
	raw := mustRecords(t,
		[]string{"Market", "Order Region", "order date (DateOrders)"},
		[]string{"LATAM", "", "1/31/2018 22:56"},
		[]string{"Europe", "", "soon"},
		[]string{"Europe", "Western Europe", "2/1/2018 10:00"},
	)

	tbl, report := cleaner.Clean(context.Background(), raw)

	assert.Empty(t, report.DroppedColumns)
	require.Len(t, report.MissingValues, 2)
	assert.Equal(t, MissingValue{Column: "order_region", Count: 2, Percent: 66.67}, report.MissingValues[0])
	assert.Equal(t, MissingValue{Column: domain.ColOrderDate, Count: 1, Percent: 33.33}, report.MissingValues[1])
	assert.Equal(t, 3, report.MissingCells())

	// only the calendar columns can be derived
	assert.Equal(t, []string{domain.ColOrderMonth, domain.ColOrderYear, domain.ColOrderDayOfWeek}, report.DerivedColumns)
	assert.False(t, tbl.Has(domain.ColProfitMarginPct))
	assert.False(t, tbl.Has(domain.ColShippingDelayDays))

	rec, ok := handler.FindMessage("Column has missing values")
	require.True(t, ok)
	assert.Equal(t, "order_region", rec.Attrs["column"])

	// raw input is not modified
	assert.Equal(t, "Order Region", raw.Names()[1])
}
