package visualization

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/pkg/contracts/domain"
)

// Chart colors
var (
	colorStatus  = color.RGBA{R: 0x42, G: 0x7a, B: 0xb5, A: 0xff}
	colorLate    = color.RGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff}
	colorTrend   = color.RGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff}
	colorTrendBg = color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0x1a}
	colorSales   = color.RGBA{R: 0x7b, G: 0x9f, B: 0xd4, A: 0xff}
	colorDelay   = color.RGBA{R: 0xff, G: 0x70, B: 0x43, A: 0xcc}
	colorOnTime  = color.RGBA{G: 0x80, A: 0xff}
)

const (
	topCategories = 10
	delayBins     = 30
)

// chart describes one renderer: the columns it reads, its canvas size and how to draw it.
type chart struct {
	name    string
	columns []string
	width   vg.Length
	height  vg.Length
	build   func(t *frame.Table) (*plot.Plot, error)
}

var (
	deliveryStatusChart = chart{
		name:    "delivery_status_distribution",
		columns: []string{domain.ColDeliveryStatus},
		width:   10 * vg.Inch,
		height:  6 * vg.Inch,
		build:   buildDeliveryStatus,
	}
	lateByModeChart = chart{
		name:    "late_delivery_by_shipping_mode",
		columns: []string{domain.ColShippingMode, domain.ColLateDeliveryRisk},
		width:   10 * vg.Inch,
		height:  6 * vg.Inch,
		build:   buildLateByMode,
	}
	monthlyTrendChart = chart{
		name:    "monthly_order_trend",
		columns: []string{domain.ColOrderMonth},
		width:   14 * vg.Inch,
		height:  6 * vg.Inch,
		build:   buildMonthlyTrend,
	}
	profitByCategoryChart = chart{
		name:    "profit_by_category",
		columns: []string{domain.ColCategoryName, domain.ColOrderProfitPerOrder},
		width:   14 * vg.Inch,
		height:  7 * vg.Inch,
		build:   buildProfitByCategory,
	}
	salesByRegionChart = chart{
		name:    "sales_by_region",
		columns: []string{domain.ColMarket, domain.ColSales},
		width:   10 * vg.Inch,
		height:  6 * vg.Inch,
		build:   buildSalesByRegion,
	}
	correlationChart = chart{
		name:   "correlation_heatmap",
		width:  14 * vg.Inch,
		height: 10 * vg.Inch,
		build:  buildCorrelationHeatmap,
	}
	shippingDelayChart = chart{
		name:    "shipping_delay_distribution",
		columns: []string{domain.ColShippingDelayDays},
		width:   10 * vg.Inch,
		height:  6 * vg.Inch,
		build:   buildShippingDelay,
	}
)

// allCharts lists every chart in render order.
var allCharts = []chart{
	deliveryStatusChart,
	lateByModeChart,
	monthlyTrendChart,
	profitByCategoryChart,
	salesByRegionChart,
	correlationChart,
	shippingDelayChart,
}

// newPlot creates a plot with the shared title and grid styling.
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.Padding = vg.Points(8)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// rotateXTicks slants the category labels under the X axis.
func rotateXTicks(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

func buildDeliveryStatus(t *frame.Table) (*plot.Plot, error) {
	status, err := t.Col(domain.ColDeliveryStatus)
	if err != nil {
		return nil, err
	}
	counts := valueCounts(status)
	if len(counts) == 0 {
		return nil, fmt.Errorf("%s: %w", domain.ColDeliveryStatus, plotter.ErrNoData)
	}

	p := newPlot("Order Distribution by Delivery Status", "Delivery Status", "Number of Orders")
	values := make(plotter.Values, len(counts))
	labels := plotter.XYLabels{XYs: make(plotter.XYs, len(counts)), Labels: make([]string, len(counts))}
	for i, g := range counts {
		values[i] = g.Value
		labels.XYs[i] = plotter.XY{X: float64(i), Y: g.Value}
		labels.Labels[i] = thousands(g.Value)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, err
	}
	bars.Color = colorStatus
	bars.LineStyle.Width = vg.Points(0.5)

	text, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	for i := range text.TextStyle {
		text.TextStyle[i].XAlign = draw.XCenter
	}
	text.Offset = vg.Point{Y: vg.Points(4)}

	p.Add(plotter.NewGrid(), bars, text)
	p.NominalX(labelsOf(counts)...)
	rotateXTicks(p)
	return p, nil
}

func buildLateByMode(t *frame.Table) (*plot.Plot, error) {
	mode, err := t.Col(domain.ColShippingMode)
	if err != nil {
		return nil, err
	}
	risk, err := t.Col(domain.ColLateDeliveryRisk)
	if err != nil {
		return nil, err
	}
	if !risk.Kind().IsNumeric() {
		return nil, fmt.Errorf("%s: %s column is not numeric", domain.ColLateDeliveryRisk, risk.Kind())
	}

	rates := groupBy(mode, risk, mean)
	if len(rates) == 0 {
		return nil, fmt.Errorf("%s: %w", domain.ColShippingMode, plotter.ErrNoData)
	}
	for i := range rates {
		rates[i].Value *= 100
	}
	sort.SliceStable(rates, func(a, b int) bool { return rates[a].Value > rates[b].Value })

	p := newPlot("Late Delivery Risk by Shipping Mode", "Late Delivery Rate (%)", "")
	values := make(plotter.Values, len(rates))
	labels := plotter.XYLabels{XYs: make(plotter.XYs, len(rates)), Labels: make([]string, len(rates))}
	for i, g := range rates {
		values[i] = g.Value
		labels.XYs[i] = plotter.XY{X: g.Value, Y: float64(i)}
		labels.Labels[i] = fmt.Sprintf("%.1f%%", g.Value)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = colorLate

	text, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	for i := range text.TextStyle {
		text.TextStyle[i].YAlign = draw.YCenter
	}
	text.Offset = vg.Point{X: vg.Points(4)}

	p.Add(plotter.NewGrid(), bars, text)
	p.NominalY(labelsOf(rates)...)
	return p, nil
}

func buildMonthlyTrend(t *frame.Table) (*plot.Plot, error) {
	month, err := t.Col(domain.ColOrderMonth)
	if err != nil {
		return nil, err
	}
	if month.Kind() != frame.Period && month.Kind() != frame.Time {
		return nil, fmt.Errorf("%s: %s column is not temporal", domain.ColOrderMonth, month.Kind())
	}

	months, counts := monthlyCounts(month)
	if len(months) == 0 {
		return nil, fmt.Errorf("%s: %w", domain.ColOrderMonth, plotter.ErrNoData)
	}

	xys := make(plotter.XYs, len(months))
	for i, m := range months {
		xys[i] = plotter.XY{X: float64(m.Unix()), Y: counts[i]}
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Color = colorTrend
	line.Width = vg.Points(2)
	line.FillColor = colorTrendBg
	points.Shape = draw.CircleGlyph{}
	points.Color = colorTrend
	points.Radius = vg.Points(2)

	p := newPlot("Monthly Order Volume Over Time", "Month", "Number of Orders")
	p.X.Tick.Marker = plot.TimeTicks{Format: frame.PeriodLayout}
	p.Add(plotter.NewGrid(), line, points)
	p.Y.Min = 0
	rotateXTicks(p)
	return p, nil
}

func buildProfitByCategory(t *frame.Table) (*plot.Plot, error) {
	category, err := t.Col(domain.ColCategoryName)
	if err != nil {
		return nil, err
	}
	profit, err := t.Col(domain.ColOrderProfitPerOrder)
	if err != nil {
		return nil, err
	}
	if !profit.Kind().IsNumeric() {
		return nil, fmt.Errorf("%s: %s column is not numeric", domain.ColOrderProfitPerOrder, profit.Kind())
	}

	top := valueCounts(category)
	if len(top) > topCategories {
		top = top[:topCategories]
	}
	byCategory := make(map[string]plotter.Values, len(top))
	for _, g := range top {
		byCategory[g.Label] = nil
	}
	for i := 0; i < category.Len(); i++ {
		v, ok := profit.Float(i)
		if category.IsNull(i) || !ok {
			continue
		}
		label := category.Format(i)
		if vs, keep := byCategory[label]; keep {
			byCategory[label] = append(vs, v)
		}
	}

	var names []string
	for _, g := range top {
		if len(byCategory[g.Label]) > 0 {
			names = append(names, g.Label)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", domain.ColOrderProfitPerOrder, plotter.ErrNoData)
	}

	colors := moreland.Kindlmann().Palette(max(len(names), 2)).Colors()
	p := newPlot("Profit Distribution by Top 10 Product Categories", "Category", "Profit per Order ($)")
	p.Add(plotter.NewGrid())
	for i, name := range names {
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), byCategory[name])
		if err != nil {
			return nil, err
		}
		box.FillColor = colors[i]
		p.Add(box)
	}
	p.NominalX(names...)
	rotateXTicks(p)
	return p, nil
}

func buildSalesByRegion(t *frame.Table) (*plot.Plot, error) {
	market, err := t.Col(domain.ColMarket)
	if err != nil {
		return nil, err
	}
	sales, err := t.Col(domain.ColSales)
	if err != nil {
		return nil, err
	}
	if !sales.Kind().IsNumeric() {
		return nil, fmt.Errorf("%s: %s column is not numeric", domain.ColSales, sales.Kind())
	}

	totals := groupBy(market, sales, sum)
	if len(totals) == 0 {
		return nil, fmt.Errorf("%s: %w", domain.ColMarket, plotter.ErrNoData)
	}
	sort.SliceStable(totals, func(a, b int) bool { return totals[a].Value < totals[b].Value })

	p := newPlot("Total Sales Revenue by Market Region", "Total Sales ($)", "")
	values := make(plotter.Values, len(totals))
	labels := plotter.XYLabels{XYs: make(plotter.XYs, len(totals)), Labels: make([]string, len(totals))}
	for i, g := range totals {
		values[i] = g.Value
		labels.XYs[i] = plotter.XY{X: g.Value, Y: float64(i)}
		labels.Labels[i] = "$" + thousands(g.Value)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = colorSales

	text, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	for i := range text.TextStyle {
		text.TextStyle[i].YAlign = draw.YCenter
		text.TextStyle[i].Font.Size = vg.Points(9)
	}
	text.Offset = vg.Point{X: vg.Points(4)}

	p.Add(plotter.NewGrid(), bars, text)
	p.NominalY(labelsOf(totals)...)
	return p, nil
}

func buildCorrelationHeatmap(t *frame.Table) (*plot.Plot, error) {
	names, corr, err := CorrelationMatrix(t)
	if err != nil {
		return nil, err
	}

	heat := plotter.NewHeatMap(lowerTriangle{corr: corr}, moreland.SmoothBlueRed().Palette(255))
	heat.Min, heat.Max = -1, 1

	reversed := make([]string, len(names))
	for i, name := range names {
		reversed[len(names)-1-i] = name
	}

	p := newPlot("Correlation Heatmap - Numeric Features", "", "")
	p.Add(heat)
	p.NominalX(names...)
	p.NominalY(reversed...)
	rotateXTicks(p)
	return p, nil
}

func buildShippingDelay(t *frame.Table) (*plot.Plot, error) {
	delay, err := t.Col(domain.ColShippingDelayDays)
	if err != nil {
		return nil, err
	}
	if !delay.Kind().IsNumeric() {
		return nil, fmt.Errorf("%s: %s column is not numeric", domain.ColShippingDelayDays, delay.Kind())
	}
	values := plotter.Values(validFloats(delay))
	if len(values) == 0 {
		return nil, fmt.Errorf("%s: %w", domain.ColShippingDelayDays, plotter.ErrNoData)
	}

	hist, err := plotter.NewHist(values, delayBins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = colorDelay

	peak := 0.0
	for _, b := range hist.Bins {
		peak = math.Max(peak, b.Weight)
	}
	onTime, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 0, Y: peak}})
	if err != nil {
		return nil, err
	}
	onTime.Color = colorOnTime
	onTime.Width = vg.Points(2)
	onTime.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}

	p := newPlot("Distribution of Shipping Delay (Days)",
		"Delay (days), negative = early, positive = late", "Frequency")
	p.Add(plotter.NewGrid(), hist, onTime)
	p.Legend.Add("On Time", onTime)
	p.Legend.Top = true
	return p, nil
}

// thousands formats v rounded to an integer with comma separators.
func thousands(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}
