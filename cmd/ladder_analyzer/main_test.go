package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeInputs(t *testing.T) (sizes, ssims string) {
	t.Helper()
	dir := t.TempDir()
	sizes = filepath.Join(dir, "avg_sizes")
	ssims = filepath.Join(dir, "avg_ssims")
	if err := os.WriteFile(sizes, []byte(sizesDump), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ssims, []byte(ssimsDump), 0o644); err != nil {
		t.Fatal(err)
	}
	return sizes, ssims
}

func TestRun(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	sizes, ssims := writeInputs(t)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-sizes", sizes, "-ssims", ssims, "-rungs", "3"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	want := "Avg size (bytes):\n[105, 195, 311]\nAvg ssim_index:\n[0.78125, 0.890625, 0.953125]\n"
	if stdout.String() != want {
		t.Errorf("stdout:\n%s\nwant:\n%s", stdout.String(), want)
	}
}

// Packages that log through slog.Default must honour -log-level and -log-format.
func TestRun_DefaultLoggerConfigured(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	sizes, ssims := writeInputs(t)
	pdf := filepath.Join(t.TempDir(), "r.pdf")
	var stdout, stderr bytes.Buffer
	args := []string{"-sizes", sizes, "-ssims", ssims, "-rungs", "3", "-pdf", pdf, "-log-level", "debug", "-log-format", "json"}
	if code := run(args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(stderr.String()), "\n") {
		if !strings.HasPrefix(line, "{") {
			t.Errorf("non-JSON log line: %q", line)
		}
		if strings.Contains(line, `"msg":"report: PDF written"`) && strings.Contains(line, `"level":"DEBUG"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("debug line from the report package missing, stderr:\n%s", stderr.String())
	}
}

func TestRun_Errors(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"help", []string{"-h"}, 0},
		{"unknown flag", []string{"-nope"}, 1},
		{"bad log level", []string{"-log-level", "loud"}, 1},
		{"missing input", []string{"-sizes", filepath.Join(t.TempDir(), "missing")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.code {
				t.Errorf("exit code %d, want %d; stderr:\n%s", code, tt.code, stderr.String())
			}
		})
	}
}
