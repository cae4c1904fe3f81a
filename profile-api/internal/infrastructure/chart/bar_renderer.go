package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/fernsky/digital-profile/profile-api/internal/pkg/logger"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

var barColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}

type BarRenderer struct {
	width  vg.Length
	height vg.Length
	logger logger.Logger
}

func NewBarRenderer(widthInches, heightInches float64, log logger.Logger) *BarRenderer {
	if widthInches <= 0 {
		widthInches = 8
	}
	if heightInches <= 0 {
		heightInches = 4.2
	}
	return &BarRenderer{
		width:  vg.Length(widthInches) * vg.Inch,
		height: vg.Length(heightInches) * vg.Inch,
		logger: logger.ForComponent(log, "chart_renderer"),
	}
}

// RenderBar draws one bar per point with its percentage above it and
// returns PNG bytes.
func (r *BarRenderer) RenderBar(points []stats.ChartPoint, title string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Min = 0

	values := make(plotter.Values, len(points))
	names := make([]string, len(points))
	var maxValue float64
	for i, pt := range points {
		values[i] = pt.Value
		names[i] = pt.Label
		maxValue = math.Max(maxValue, pt.Value)
	}
	if len(values) == 0 {
		values = plotter.Values{0}
		names = []string{""}
	}

	barWidth := vg.Length(float64(r.width) / float64(len(values)+1) * 0.6)
	bars, err := plotter.NewBarChart(values, barWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	if len(names) > 6 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	if maxValue > 0 {
		p.Y.Max = maxValue * 1.15
		xys := make([]plotter.XY, len(points))
		texts := make([]string, len(points))
		for i, pt := range points {
			xys[i] = plotter.XY{X: float64(i), Y: pt.Value + maxValue*0.02}
			texts[i] = fmt.Sprintf("%.1f%%", pt.Percentage)
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return nil, fmt.Errorf("failed to build value labels: %w", err)
		}
		p.Add(labels)
	}

	w, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}

	r.logger.Debugf("Rendered %q with %d bars (%d bytes)", title, len(points), buf.Len())
	return buf.Bytes(), nil
}
