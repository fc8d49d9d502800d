// Package render draws a memory time series as a chart image.
package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/absmach/memmon/pkg/record"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	title        = "Memory Usage over Time"
	xLabel       = "Time (s)"
	yLabel       = "Memory Usage (MB)"
	timeFormat   = "15:04:05"
	maxLabelLen  = 80
	unknownLabel = "(command line unavailable)"
)

// ErrNoData is returned instead of drawing an empty chart.
var ErrNoData = errors.New("no samples to render")

type Renderer interface {
	// Render draws samples labelled with the command line to path. The image
	// format follows the file extension.
	Render(label string, samples []record.Sample, path string) error
}

var _ Renderer = (*plotRenderer)(nil)

type plotRenderer struct {
	width  vg.Length
	height vg.Length
}

// NewPlotRenderer returns a renderer backed by gonum/plot producing images
// of the given size in inches. Non-positive sizes fall back to 10x6.
func NewPlotRenderer(width, height float64) Renderer {
	if width <= 0 {
		width = 10
	}
	if height <= 0 {
		height = 6
	}

	return &plotRenderer{
		width:  vg.Length(width) * vg.Inch,
		height: vg.Length(height) * vg.Inch,
	}
}

func (pr *plotRenderer) Render(label string, samples []record.Sample, path string) error {
	if len(samples) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat}
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(samples))
	for i, s := range samples {
		xys[i].X = s.Timestamp
		xys[i].Y = s.ResidentMB
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("failed to build chart data: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	points.Shape = draw.CircleGlyph{}
	points.Color = line.Color
	points.Radius = vg.Points(2)

	p.Add(line, points)
	p.Legend.Add(legendLabel(label), line, points)
	p.Legend.Top = true

	if err := p.Save(pr.width, pr.height, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}

	return nil
}

func legendLabel(label string) string {
	if label == "" {
		return unknownLabel
	}

	r := []rune(label)
	if len(r) > maxLabelLen {
		return string(r[:maxLabelLen-3]) + "..."
	}

	return label
}
