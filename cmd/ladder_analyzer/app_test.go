package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/ladder_analyzer_go/internal/analysis"
	"github.com/user/ladder_analyzer_go/internal/config"
	"github.com/user/ladder_analyzer_go/internal/parser"
)

const sizesDump = `tags: a
1_0 100
1_1 300
1_2 200
tags: b
1_0 110
1_1 190
1_2 321
`

const ssimsDump = `tags: a
1_0 0.875
1_1 0.75
1_2 0.9375
tags: b
1_0 0.96875
1_1 0.8125
1_2 0.90625
`

func newTestApp(t *testing.T, sizes, ssims string) (*App, *config.Config, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Rungs = 3
	cfg.Inputs.Sizes = filepath.Join(dir, "avg_sizes")
	cfg.Inputs.SSIMs = filepath.Join(dir, "avg_ssims")
	if sizes != "" {
		if err := os.WriteFile(cfg.Inputs.Sizes, []byte(sizes), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if ssims != "" {
		if err := os.WriteFile(cfg.Inputs.SSIMs, []byte(ssims), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewApp(&cfg, log, &out), &cfg, &out
}

func TestApp_Run(t *testing.T) {
	app, _, out := newTestApp(t, sizesDump, ssimsDump)
	if err := app.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := "Avg size (bytes):\n[105, 195, 311]\nAvg ssim_index:\n[0.78125, 0.890625, 0.953125]\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestApp_Run_MissingSSIMs(t *testing.T) {
	app, _, out := newTestApp(t, sizesDump, "")
	err := app.Run(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want fs.ErrNotExist", err)
	}
	// The size section is already out when the SSIM dump turns out missing.
	if !strings.HasPrefix(out.String(), "Avg size (bytes):\n") || strings.Contains(out.String(), "ssim") {
		t.Errorf("output: %q", out.String())
	}
}

func TestApp_Run_Errors(t *testing.T) {
	tests := []struct {
		name  string
		sizes string
		want  error
	}{
		{"malformed", "tags: 0\n1_2 abc\n", parser.ErrMalformedValue},
		{"inconsistent", "tags: a\n1_0 1\n1_1 2\ntags: b\n1_0 1\n", analysis.ErrInconsistentLength},
		{"no channels", "\n\n", analysis.ErrNoChannels},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, out := newTestApp(t, tt.sizes, ssimsDump)
			if err := app.Run(context.Background()); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if out.Len() != 0 {
				t.Errorf("partial output on size failure: %q", out.String())
			}
		})
	}
}

func TestApp_Run_Artifacts(t *testing.T) {
	app, cfg, out := newTestApp(t, sizesDump, ssimsDump)
	dir := t.TempDir()
	cfg.Bola.Enabled = true
	cfg.Output.PlotDir = filepath.Join(dir, "plots")
	cfg.Output.PDF = filepath.Join(dir, "report.pdf")
	cfg.Output.PromFile = filepath.Join(dir, "ladder.prom")

	if err := app.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "BOLA parameters:\nV = ") {
		t.Errorf("missing BOLA section:\n%s", out.String())
	}
	for _, p := range []string{
		filepath.Join(cfg.Output.PlotDir, "ladder_size.png"),
		filepath.Join(cfg.Output.PlotDir, "heatmap_ssim.png"),
		filepath.Join(cfg.Output.PlotDir, "bola_objective.png"),
		filepath.Join(cfg.Output.PlotDir, "bola_decision.png"),
		cfg.Output.PDF,
		cfg.Output.PromFile,
	} {
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Errorf("%s: %v", p, err)
		}
	}
	prom, err := os.ReadFile(cfg.Output.PromFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(prom), `ladder_avg_size_bytes{rung="3"} 310.5`) {
		t.Errorf("prom file:\n%s", prom)
	}
}
