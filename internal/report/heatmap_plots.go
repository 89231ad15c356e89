package report

import (
	"fmt"
	"image/color"

	"github.com/user/ladder_analyzer_go/internal/analysis"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// maxHeatmapLabels bounds the number of channel names printed on the Y axis.
const maxHeatmapLabels = 40

// channelGrid adapts sorted channel ladders to plotter.GridXYZ.
// Columns are rungs, rows are channels.
type channelGrid struct {
	rows [][]float64
}

func (g channelGrid) Dims() (c, r int) { return len(g.rows[0]), len(g.rows) }
func (g channelGrid) Z(c, r int) float64 { return g.rows[r][c] }
func (g channelGrid) X(c int) float64 { return float64(c + 1) }
func (g channelGrid) Y(r int) float64 { return float64(r) }

// CreateChannelHeatmap renders the sorted ladder of every channel as one heatmap row,
// normalised per rung to the deviation from the averaged ladder (percent).
func CreateChannelHeatmap(res *analysis.LadderAnalysis, title string) ([]byte, error) {
	if res == nil || res.NumChannels() == 0 {
		return nil, fmt.Errorf("no channel ladders to plot heatmap")
	}

	rows := make([][]float64, res.NumChannels())
	var all []float64
	for r, ch := range res.Channels {
		row := make([]float64, len(ch.Values))
		for c, v := range ch.Values {
			// A zero average leaves the cell at 0% rather than dividing by zero.
			if res.Average[c] != 0 {
				row[c] = 100 * (v - res.Average[c]) / res.Average[c]
			}
		}
		rows[r] = row
		all = append(all, row...)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Rung"
	p.Y.Label.Text = "Channel"
	p.X.Min = 0.5
	p.X.Max = float64(res.NumRungs()) + 0.5
	p.X.Tick.Marker = plot.ConstantTicks(rungTicks(res.NumRungs()))
	p.Y.Min = -0.5 // cells are centred on integer rows
	p.Y.Max = float64(len(rows)) - 0.5

	// Past maxHeatmapLabels the names overlap; fall back to default ticks.
	if len(rows) <= maxHeatmapLabels {
		yTicks := make([]plot.Tick, len(rows))
		for i, ch := range res.Channels {
			yTicks[i] = plot.Tick{Value: float64(i), Label: ch.Channel}
		}
		p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	}

	// Symmetric range so that 0% (the average) sits in the middle of the palette.
	span := max(floats.Max(all), -floats.Min(all))
	if span == 0 {
		span = 1
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-span)
	cm.SetMax(span)
	hm := plotter.NewHeatMap(channelGrid{rows: rows}, cm.Palette(255))
	hm.Min = -span
	hm.Max = span
	hm.NaN = color.Gray{Y: 200} // light grey for missing cells
	p.Add(hm)

	// Grow the image with the channel count so rows stay readable.
	return renderPNG(p, vg.Points(800), vg.Points(max(200, 12*float64(len(rows))+120)))
}
