package report

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/user/ladder_analyzer_go/internal/analysis"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// channelLineColor draws individual channel ladders faintly behind the average.
var channelLineColor = color.RGBA{R: 160, G: 160, B: 160, A: 255}

var averageLineColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}

// CreateLadderPlot draws every sorted channel ladder plus the averaged ladder
// against rung number and returns the PNG bytes.
func CreateLadderPlot(res *analysis.LadderAnalysis, title, yLabel string) ([]byte, error) {
	if res == nil || len(res.Average) == 0 {
		return nil, fmt.Errorf("no ladder to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Rung"
	p.Y.Label.Text = yLabel
	// Half a rung of padding on each side keeps the end points off the frame.
	p.X.Min = 0.5
	p.X.Max = float64(res.NumRungs()) + 0.5
	p.X.Tick.Marker = plot.ConstantTicks(rungTicks(res.NumRungs()))
	p.Add(plotter.NewGrid())

	// Channel lines first so the average is drawn on top.
	for _, ch := range res.Channels {
		line, err := plotter.NewLine(rungXYs(ch.Values))
		if err != nil {
			return nil, fmt.Errorf("failed to create line for channel %q: %w", ch.Channel, err)
		}
		line.Color = channelLineColor
		line.LineStyle.Width = vg.Points(0.5)
		p.Add(line)
	}

	avg, points, err := plotter.NewLinePoints(rungXYs(res.Average))
	if err != nil {
		return nil, fmt.Errorf("failed to create average line: %w", err)
	}
	avg.Color = averageLineColor
	avg.LineStyle.Width = vg.Points(2)
	points.Color = averageLineColor
	p.Add(avg, points)
	p.Legend.Add(fmt.Sprintf("Average of %d channels", res.NumChannels()), avg, points)
	p.Legend.Top = true
	p.Legend.Left = true

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

func rungXYs(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i + 1), Y: v} // rungs are 1-based on the axis
	}
	return pts
}

// rungTicks labels every rung 1..n.
func rungTicks(n int) []plot.Tick {
	ticks := make([]plot.Tick, n)
	for i := range ticks {
		ticks[i] = plot.Tick{Value: float64(i + 1), Label: fmt.Sprintf("%d", i+1)}
	}
	return ticks
}

func renderPNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
