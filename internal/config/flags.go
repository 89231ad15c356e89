package config

// This file implements CLI flag parsing. Flags are parsed into a scratch
// struct first, the YAML file (if -config is given) is loaded and validated on
// top of the defaults, replacing cfg, and only the flags the user actually passed are then applied.

import (
	"flag"
	"fmt"
	"io"
)

// flagValues mirrors the overridable Config fields.
type flagValues struct {
	configPath string
	sizes      string
	ssims      string
	rungs      int
	plotDir    string
	pdf        string
	prom       string
	bola       bool
	redis      string
	watch      bool
	logLevel   string
	logFormat  string
}

// ParseFlags parses args (without the program name) into cfg.
// It returns flag.ErrHelp when -h/-help was requested; usage has then
// already been written to out.
func ParseFlags(cfg *Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ladder_analyzer", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { printUsage(fs, out) }

	var v flagValues
	fs.StringVar(&v.configPath, "config", "", "Path to YAML config file (optional)")
	fs.StringVar(&v.sizes, "sizes", cfg.Inputs.Sizes, "Size ladder dump")
	fs.StringVar(&v.ssims, "ssims", cfg.Inputs.SSIMs, "SSIM ladder dump")
	fs.IntVar(&v.rungs, "rungs", cfg.Rungs, "Expected rungs per ladder (warn on mismatch)")
	fs.StringVar(&v.plotDir, "plot-dir", cfg.Output.PlotDir, "Write ladder plots (PNG) into this directory")
	fs.StringVar(&v.pdf, "pdf", cfg.Output.PDF, "Write a PDF report to this path")
	fs.StringVar(&v.prom, "prom", cfg.Output.PromFile, "Write Prometheus textfile metrics to this path")
	fs.BoolVar(&v.bola, "bola", cfg.Bola.Enabled, "Derive BOLA V/gp parameters from the averaged ladders")
	fs.StringVar(&v.redis, "redis", cfg.Publish.RedisAddr, "Publish averaged ladders to this Redis address")
	fs.BoolVar(&v.watch, "watch", cfg.Watch, "Re-run whenever an input file changes")
	fs.StringVar(&v.logLevel, "log-level", cfg.Log.Level, "Log level: debug | info | warn | error")
	fs.StringVar(&v.logFormat, "log-format", cfg.Log.Format, "Log format: text | json")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	if v.configPath != "" {
		loaded, err := Load(v.configPath)
		if err != nil {
			return err
		}
		*cfg = *loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sizes":
			cfg.Inputs.Sizes = v.sizes
		case "ssims":
			cfg.Inputs.SSIMs = v.ssims
		case "rungs":
			cfg.Rungs = v.rungs
		case "plot-dir":
			cfg.Output.PlotDir = v.plotDir
		case "pdf":
			cfg.Output.PDF = v.pdf
		case "prom":
			cfg.Output.PromFile = v.prom
		case "bola":
			cfg.Bola.Enabled = v.bola
		case "redis":
			cfg.Publish.RedisAddr = v.redis
		case "watch":
			cfg.Watch = v.watch
		case "log-level":
			cfg.Log.Level = v.logLevel
		case "log-format":
			cfg.Log.Format = v.logFormat
		}
	})
	return nil
}

func printUsage(fs *flag.FlagSet, out io.Writer) {
	fmt.Fprintf(out, `Usage: ladder_analyzer [flags]

Averages per-channel encoding ladders (size and SSIM) across channels and
prints the two averaged ladders. With no flags, reads %q and %q from the
working directory.

Flags:
`, DefaultSizesFile, DefaultSSIMsFile)
	fs.PrintDefaults()
}
