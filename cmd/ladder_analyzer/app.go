package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/user/ladder_analyzer_go/internal/analysis"
	"github.com/user/ladder_analyzer_go/internal/config"
	"github.com/user/ladder_analyzer_go/internal/export"
	"github.com/user/ladder_analyzer_go/internal/report"
)

// App runs one analysis pass over both ladder dumps.
type App struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer
}

// NewApp creates an App writing ladders to out and diagnostics to log.
func NewApp(cfg *config.Config, log *slog.Logger, out io.Writer) *App {
	return &App{cfg: cfg, log: log, out: out}
}

// Run averages the size ladder and prints it, then does the same for SSIM,
// then writes whichever optional outputs are configured.
// The size section is printed before the SSIM dump is read.
func (a *App) Run(ctx context.Context) error {
	sizes, err := a.analyze(a.cfg.Inputs.Sizes)
	if err != nil {
		return err
	}
	if err := report.WriteSizeSection(a.out, sizes.Average); err != nil {
		return err
	}

	ssims, err := a.analyze(a.cfg.Inputs.SSIMs)
	if err != nil {
		return err
	}
	if err := report.WriteSSIMSection(a.out, ssims.Average); err != nil {
		return err
	}

	in := report.ReportInput{Sizes: sizes, SSIMs: ssims}

	if a.cfg.Bola.Enabled {
		bcfg := analysis.BolaConfig{
			MinBufS:        a.cfg.Bola.MinBufS,
			MaxBufS:        a.cfg.Bola.MaxBufS,
			ChunkDurationS: a.cfg.Bola.ChunkDurationS,
		}
		params, err := analysis.BolaFromLadders(sizes.Average, ssims.Average, bcfg)
		if err != nil {
			return fmt.Errorf("bola: %w", err)
		}
		if _, err := fmt.Fprintf(a.out, "BOLA parameters:\nV = %g, gp = %g\n", params.V, params.Gp); err != nil {
			return err
		}
		in.Bola = &params
		in.BolaConfig = bcfg
	}

	if err := a.writeArtifacts(&in); err != nil {
		return err
	}
	return a.publish(ctx, sizes, ssims)
}

func (a *App) analyze(path string) (*analysis.LadderAnalysis, error) {
	res, err := analysis.AnalyzeLadderFile(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug("ladder averaged", "path", path, "channels", res.NumChannels(), "rungs", res.NumRungs())
	if res.NumRungs() != a.cfg.Rungs {
		a.log.Warn("unexpected ladder length", "path", path, "rungs", res.NumRungs(), "expected", a.cfg.Rungs)
	}
	return res, nil
}

func (a *App) writeArtifacts(in *report.ReportInput) error {
	out := a.cfg.Output
	if out.PlotDir != "" || out.PDF != "" {
		if err := a.renderPlots(in); err != nil {
			return err
		}
	}

	if out.PlotDir != "" {
		if err := os.MkdirAll(out.PlotDir, 0o755); err != nil {
			return fmt.Errorf("cannot create plot directory: %w", err)
		}
		files := map[string][]byte{
			"ladder_size.png":  in.SizePlot,
			"ladder_ssim.png":  in.SSIMPlot,
			"heatmap_size.png": in.SizeHeatmap,
			"heatmap_ssim.png": in.SSIMHeatmap,
		}
		if in.Bola != nil {
			files["bola_objective.png"] = in.BolaObjectivePlot
			files["bola_decision.png"] = in.BolaDecisionPlot
		}
		for name, img := range files {
			path := filepath.Join(out.PlotDir, name)
			if err := os.WriteFile(path, img, 0o644); err != nil {
				return fmt.Errorf("write plot: %w", err)
			}
			a.log.Info("plot written", "path", path)
		}
	}

	if out.PDF != "" {
		if err := report.BuildPDFReport(out.PDF, *in); err != nil {
			return err
		}
		a.log.Info("PDF report written", "path", out.PDF)
	}

	if out.PromFile != "" {
		if err := export.WriteLadderMetricsFile(out.PromFile, ladderSet(in.Sizes, in.SSIMs)); err != nil {
			return err
		}
		a.log.Info("prometheus metrics written", "path", out.PromFile)
	}
	return nil
}

// pendingPlot pairs a ReportInput image slot with the function that renders it.
type pendingPlot struct {
	dst    *[]byte
	render func() ([]byte, error)
}

func (a *App) renderPlots(in *report.ReportInput) error {
	plots := []pendingPlot{
		{&in.SizePlot, func() ([]byte, error) {
			return report.CreateLadderPlot(in.Sizes, "Average Size Ladder", "Size (bytes)")
		}},
		{&in.SSIMPlot, func() ([]byte, error) {
			return report.CreateLadderPlot(in.SSIMs, "Average SSIM Ladder", "SSIM index")
		}},
		{&in.SizeHeatmap, func() ([]byte, error) {
			return report.CreateChannelHeatmap(in.Sizes, "Size Deviation from Average (%)")
		}},
		{&in.SSIMHeatmap, func() ([]byte, error) {
			return report.CreateChannelHeatmap(in.SSIMs, "SSIM Deviation from Average (%)")
		}},
	}
	if in.Bola != nil {
		formats := analysis.BolaFormats(in.Sizes.Average, in.SSIMs.Average)
		plots = append(plots,
			pendingPlot{&in.BolaObjectivePlot, func() ([]byte, error) {
				return report.CreateBolaObjectivePlot(formats, *in.Bola, in.BolaConfig)
			}},
			pendingPlot{&in.BolaDecisionPlot, func() ([]byte, error) {
				return report.CreateBolaDecisionPlot(formats, *in.Bola, in.BolaConfig)
			}},
		)
	}
	for _, p := range plots {
		img, err := p.render()
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		*p.dst = img
	}
	return nil
}

func (a *App) publish(ctx context.Context, sizes, ssims *analysis.LadderAnalysis) error {
	if a.cfg.Publish.RedisAddr == "" {
		return nil
	}
	pub, err := export.NewRedisPublisher(ctx, a.cfg.Publish.RedisAddr, a.cfg.Publish.KeyPrefix)
	if err != nil {
		return err
	}
	defer pub.Close()

	if err := pub.Publish(ctx, ladderSet(sizes, ssims)); err != nil {
		return err
	}
	a.log.Info("ladders published", "redis", a.cfg.Publish.RedisAddr, "size_key", pub.SizeKey(), "ssim_key", pub.SSIMKey())
	return nil
}

func ladderSet(sizes, ssims *analysis.LadderAnalysis) export.LadderSet {
	return export.LadderSet{
		Sizes:        sizes.Average,
		SSIMs:        ssims.Average,
		SizeChannels: sizes.NumChannels(),
		SSIMChannels: ssims.NumChannels(),
	}
}
