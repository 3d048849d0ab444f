// Package visualization renders the exploratory charts of the cleaned supply-chain
// table with gonum/plot.
//
// Each Plot method draws one chart from the table and returns the plot. When a path
// is given the chart is also written to disk; the file extension picks the format and
// raster formats use the configured DPI. RenderAll writes every chart whose source
// columns exist, in parallel.
package visualization
