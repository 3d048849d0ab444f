package visualization

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/config"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/errors"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/frame"
	"github.com/Abiyes-Stack/dataco-supply-chain-analysis/internal/infrastructure"
)

// Renderer draws the supply-chain charts and writes them to disk.
type Renderer struct {
	logger      *slog.Logger
	tel         *infrastructure.Telemetry
	dpi         int
	format      string
	concurrency int
}

// NewRenderer creates a renderer from the chart settings. Zero settings fall back to
// 150 DPI PNG rendered one chart at a time.
func NewRenderer(cfg config.ChartsConfig, logger *slog.Logger, tel *infrastructure.Telemetry) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry()
	}

	r := &Renderer{
		logger:      logger.With(slog.String("component", "visualization")),
		tel:         tel,
		dpi:         cfg.DPI,
		format:      cfg.Format,
		concurrency: cfg.Concurrency,
	}
	if r.dpi <= 0 {
		r.dpi = config.DefaultChartDPI
	}
	if r.format == "" {
		r.format = "png"
	}
	if r.concurrency <= 0 {
		r.concurrency = 1
	}
	return r
}

// PlotDeliveryStatusDistribution draws order counts per delivery status.
func (r *Renderer) PlotDeliveryStatusDistribution(t *frame.Table, path string) (*plot.Plot, error) {
	return r.render(deliveryStatusChart, t, path)
}

// PlotLateDeliveryByShippingMode draws the late-delivery rate of each shipping mode.
func (r *Renderer) PlotLateDeliveryByShippingMode(t *frame.Table, path string) (*plot.Plot, error) {
	return r.render(lateByModeChart, t, path)
}

// PlotMonthlyOrderTrend draws the number of orders per month.
func (r *Renderer) PlotMonthlyOrderTrend(t *frame.Table, path string) (*plot.Plot, error) {
	return r.render(monthlyTrendChart, t, path)
}

// PlotProfitByCategory draws profit per order for the ten most frequent categories.
func (r *Renderer) PlotProfitByCategory(t *frame.Table, path string) (*plot.Plot, error) {
	return r.render(profitByCategoryChart, t, path)
}

// PlotSalesByRegion draws total sales per market.
func (r *Renderer) PlotSalesByRegion(t *frame.Table, path string) (*plot.Plot, error) {
	return r.render(salesByRegionChart, t, path)
}

// PlotCorrelationHeatmap draws the lower triangle of the numeric column correlations.
func (r *Renderer) PlotCorrelationHeatmap(t *frame.Table, path string) (*plot.Plot, error) {
	return r.render(correlationChart, t, path)
}

// PlotShippingDelayDistribution draws a histogram of shipping delay days.
func (r *Renderer) PlotShippingDelayDistribution(t *frame.Table, path string) (*plot.Plot, error) {
	return r.render(shippingDelayChart, t, path)
}

// render builds one chart and, when path is set, saves it.
func (r *Renderer) render(c chart, t *frame.Table, path string) (*plot.Plot, error) {
	for _, name := range c.columns {
		if _, err := t.Col(name); err != nil {
			return nil, errors.NewSchemaError(name, err)
		}
	}

	p, err := c.build(t)
	if err != nil {
		return nil, errors.NewRenderError(c.name, err)
	}

	if path != "" {
		if err := r.save(p, c, path); err != nil {
			return nil, errors.NewRenderError(c.name, err)
		}
	}
	return p, nil
}

// save writes p to path. Raster formats use the configured DPI; vector formats take
// their format from the file extension.
func (r *Renderer) save(p *plot.Plot, c chart, path string) (err error) {
	format := filepath.Ext(path)
	if format != "" {
		format = format[1:]
	}

	var w io.WriterTo
	switch format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		canvas := vgimg.NewWith(vgimg.UseWH(c.width, c.height), vgimg.UseDPI(r.dpi))
		p.Draw(draw.New(canvas))
		switch format {
		case "png":
			w = vgimg.PngCanvas{Canvas: canvas}
		case "jpg", "jpeg":
			w = vgimg.JpegCanvas{Canvas: canvas}
		default:
			w = vgimg.TiffCanvas{Canvas: canvas}
		}
	default:
		if w, err = p.WriterTo(c.width, c.height, format); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = w.WriteTo(f)
	return err
}

// RenderAll writes every chart whose source columns exist into dir and returns the
// written paths in sorted order. Charts render concurrently up to the configured limit;
// the first failure cancels the charts not yet started.
func (r *Renderer) RenderAll(ctx context.Context, t *frame.Table, dir string) (paths []string, err error) {
	ctx, done := r.tel.StartStep(ctx, "render_charts")
	defer func() { done(err) }()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to create charts directory %s", dir), err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, c := range allCharts {
		if !t.Has(c.columns...) {
			r.logger.InfoContext(ctx, "Skipping chart with missing columns",
				slog.String("chart", c.name),
				slog.Any("columns", c.columns))
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			path := filepath.Join(dir, c.name+"."+r.format)
			if _, err := r.render(c, t, path); err != nil {
				r.logger.ErrorContext(gctx, "failed to render chart",
					slog.String("chart", c.name),
					slog.String("error", err.Error()))
				return err
			}

			r.tel.Metrics.ChartsRendered.Add(gctx, 1)
			r.logger.InfoContext(gctx, "Rendered chart",
				slog.String("chart", c.name),
				slog.String("path", path),
				slog.Duration("duration", time.Since(start)))

			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}
