// Package chart renders price trend charts as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"FuelSentinel/internal/model"
)

// ErrNoData means there is nothing to draw.
var ErrNoData = errors.New("no price data to chart")

const (
	width  = 10 * vg.Inch
	height = 6 * vg.Inch
)

// Render draws one line per fuel type over the series dates and returns the
// PNG bytes. Dates where a fuel is absent leave a gap in its points.
func Render(series model.TimeSeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = "CPC Oil Price Trend"
	p.Y.Label.Text = "NTD / liter"
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -0.8
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	dates := make([]string, len(series))
	for i, r := range series {
		dates[i] = r.Date
	}
	p.NominalX(dates...)

	drawn := 0
	for i, f := range model.FuelTypes {
		var pts plotter.XYs
		for x, r := range series {
			if price, ok := r.Price(f); ok {
				pts = append(pts, plotter.XY{X: float64(x), Y: price})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("build %s line: %w", f, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(f.ChartLabel(), line, points)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}
