package chart

// Energy versus time line chart. Axis labels, the y range and the line color
// are fixed so charts from different runs share one scale.

import (
	"fmt"
	"image/color"

	"grafica-energia/internal/dataset"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	YLabel = "Energía"
	XLabel = "Tiempo"

	YMin = -0.0002
	YMax = 0.0002

	labelFontSize = 12  // pt
	lineWidth     = 1.5 // pt
)

// LineColor is #B4045F.
var LineColor = color.RGBA{R: 0xB4, G: 0x04, B: 0x5F, A: 0xFF}

// NewEnergyLine plots time on x and energy on y in row order as a solid line
// without point markers.
func NewEnergyLine(ds *dataset.Dataset) (*plotter.Line, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("no data to plot")
	}
	if len(ds.Time) != len(ds.Energy) {
		return nil, fmt.Errorf("time and energy length mismatch: %d != %d", len(ds.Time), len(ds.Energy))
	}

	pts := make(plotter.XYs, ds.Len())
	for i := range pts {
		pts[i].X = ds.Time[i]
		pts[i].Y = ds.Energy[i]
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create energy line: %w", err)
	}
	line.LineStyle.Color = LineColor
	line.LineStyle.Width = vg.Points(lineWidth)
	line.LineStyle.Dashes = nil
	return line, nil
}

// NewEnergyChart builds the labelled plot with the energy line. fontPath may
// point at a DejaVuSans.ttf; empty means search the usual locations.
func NewEnergyChart(ds *dataset.Dataset, fontPath string) (*plot.Plot, error) {
	line, err := NewEnergyLine(ds)
	if err != nil {
		return nil, err
	}

	axisFont := resolveLabelFont(fontPath)
	axisFont.Size = vg.Points(labelFontSize)

	p := plot.New()
	p.Y.Label.Text = YLabel
	p.Y.Label.TextStyle.Font = axisFont
	p.X.Label.Text = XLabel
	p.X.Label.TextStyle.Font = axisFont

	p.Add(line)

	// Add widens the axes to the data, so the range is pinned afterwards.
	p.Y.Min = YMin
	p.Y.Max = YMax

	return p, nil
}
