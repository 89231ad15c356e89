package report

import (
	"fmt"
	"image/color"
	"math"

	"github.com/user/ladder_analyzer_go/internal/analysis"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	// minBolaPlotBufS is the shortest buffer axis drawn; a 15 s max buffer
	// still shows what happens past it.
	minBolaPlotBufS = 25.0
	// Objectives are linear in the buffer, decisions are stepwise.
	objectiveSamples = 3
	decisionSamples  = 1000
)

var bufferMarkColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}

// bolaBufferAxis returns the right end of the buffer axis in seconds.
func bolaBufferAxis(cfg analysis.BolaConfig) float64 {
	return math.Max(minBolaPlotBufS, cfg.MaxBufS)
}

func checkBolaPlotInput(formats []analysis.Encoded, cfg analysis.BolaConfig) error {
	if len(formats) == 0 {
		return fmt.Errorf("no formats to plot")
	}
	if cfg.ChunkDurationS <= 0 {
		return fmt.Errorf("chunk duration must be positive, got %g", cfg.ChunkDurationS)
	}
	return nil
}

// CreateBolaObjectivePlot draws each format's BOLA objective against the
// client buffer (seconds) and returns the PNG bytes. The two smallest
// formats cross at the minimum buffer; the largest reaches zero at the
// maximum buffer.
func CreateBolaObjectivePlot(formats []analysis.Encoded, params analysis.BolaParameters, cfg analysis.BolaConfig) ([]byte, error) {
	if err := checkBolaPlotInput(formats, cfg); err != nil {
		return nil, err
	}
	upper := bolaBufferAxis(cfg)

	p := plot.New()
	p.Title.Text = "BOLA Objective vs. Client Buffer"
	p.X.Label.Text = "Client buffer (s)"
	p.Y.Label.Text = "Objective (per byte)"
	p.X.Min = 0
	p.X.Max = upper
	p.Add(plotter.NewGrid())

	for i, e := range formats {
		pts := make(plotter.XYs, objectiveSamples+1)
		for j := range pts {
			bufS := upper * float64(j) / objectiveSamples
			pts[j] = plotter.XY{X: bufS, Y: params.Objective(e, bufS/cfg.ChunkDurationS)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create objective line for rung %d: %w", i+1, err)
		}
		line.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Rung %d (%.0f B, %.2f dB)", i+1, e.Size, e.Utility), line)
	}

	// Zero line: past it the format is not worth sending at all.
	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: upper, Y: 0}})
	if err != nil {
		return nil, fmt.Errorf("failed to create zero line: %w", err)
	}
	zero.Color = color.Black
	zero.LineStyle.Width = vg.Points(0.5)
	p.Add(zero)

	if err := addBufferMarks(p, cfg); err != nil {
		return nil, err
	}
	p.Legend.Top = true

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

// CreateBolaDecisionPlot draws the rung BOLA picks at each client buffer
// level (seconds) and returns the PNG bytes.
func CreateBolaDecisionPlot(formats []analysis.Encoded, params analysis.BolaParameters, cfg analysis.BolaConfig) ([]byte, error) {
	if err := checkBolaPlotInput(formats, cfg); err != nil {
		return nil, err
	}
	upper := bolaBufferAxis(cfg)

	p := plot.New()
	p.Title.Text = "BOLA Decision vs. Client Buffer"
	p.X.Label.Text = "Client buffer (s)"
	p.Y.Label.Text = "Chosen rung"
	p.X.Min = 0
	p.X.Max = upper
	p.Y.Min = 0.5
	p.Y.Max = float64(len(formats)) + 0.5
	p.Y.Tick.Marker = plot.ConstantTicks(rungTicks(len(formats)))
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, decisionSamples+1)
	for j := range pts {
		bufS := upper * float64(j) / decisionSamples
		idx, _ := params.ChooseMaxObjective(formats, bufS/cfg.ChunkDurationS)
		pts[j] = plotter.XY{X: bufS, Y: float64(idx + 1)}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision line: %w", err)
	}
	line.StepStyle = plotter.PostStep
	line.Color = averageLineColor
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)

	if err := addBufferMarks(p, cfg); err != nil {
		return nil, err
	}

	return renderPNG(p, vg.Points(800), vg.Points(400))
}

// addBufferMarks draws dashed verticals at the configured min and max buffer.
func addBufferMarks(p *plot.Plot, cfg analysis.BolaConfig) error {
	// Add has already widened the Y range to cover the data lines.
	yMin, yMax := p.Y.Min, p.Y.Max
	for _, x := range []float64{cfg.MinBufS, cfg.MaxBufS} {
		mark, err := plotter.NewLine(plotter.XYs{{X: x, Y: yMin}, {X: x, Y: yMax}})
		if err != nil {
			return fmt.Errorf("failed to create buffer mark: %w", err)
		}
		mark.Color = bufferMarkColor
		mark.LineStyle.Width = vg.Points(1)
		mark.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(mark)
	}
	return nil
}
