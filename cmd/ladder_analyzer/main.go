// Command ladder_analyzer averages per-channel encoding ladders.
//
// It reads the size and SSIM ladder dumps (by default "avg_sizes" and
// "avg_ssims" in the working directory), sorts each channel's ladder,
// averages across channels, and prints both averaged ladders to stdout.
// Optional outputs (plots, PDF, Prometheus textfile, Redis) are enabled by
// flags or the YAML config file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/user/ladder_analyzer_go/internal/config"
	"github.com/user/ladder_analyzer_go/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the process exit: ladders go to stdout, everything
// else to stderr. It returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// The logger doesn't exist until the config is known, so bootstrap
	// errors go straight to stderr.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args, stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "ladder_analyzer: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "ladder_analyzer: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "ladder_analyzer: %v\n", err)
		return 1
	}
	// The report and config packages log through the default logger.
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := NewApp(&cfg, log, stdout)
	if err := app.Run(ctx); err != nil {
		log.Error("ladder analysis failed", "err", err)
		if !cfg.Watch {
			return 1
		}
	}

	if cfg.Watch {
		// A failed rerun (e.g. a half-written dump) is logged and the
		// previous output stands until the next change.
		err := config.Watch(ctx, []string{cfg.Inputs.Sizes, cfg.Inputs.SSIMs}, func(path string) {
			log.Info("input changed, re-running", "path", path)
			if err := app.Run(ctx); err != nil {
				log.Error("ladder analysis failed", "err", err)
			}
		})
		if err != nil {
			log.Error("watch failed", "err", err)
			return 1
		}
	}
	return 0
}
