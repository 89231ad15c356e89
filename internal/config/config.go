package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultSizesFile      = "avg_sizes"
	DefaultSSIMsFile      = "avg_ssims"
	DefaultRungs          = 10
	DefaultMinBufS        = 3.0
	DefaultMaxBufS        = 15.0
	DefaultChunkDurationS = 2.002
	DefaultKeyPrefix      = "ladder"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Config is the full configuration tree. Fields map 1:1 to the YAML file.
type Config struct {
	Inputs  InputsConfig  `yaml:"inputs"`
	Rungs   int           `yaml:"rungs"`
	Output  OutputConfig  `yaml:"output"`
	Bola    BolaConfig    `yaml:"bola"`
	Publish PublishConfig `yaml:"publish"`
	Log     LogConfig     `yaml:"log"`

	// Watch keeps the process running and re-analyzes on input changes.
	// Flag only.
	Watch bool `yaml:"-"`
}

// InputsConfig names the two ladder dumps.
type InputsConfig struct {
	Sizes string `yaml:"sizes"`
	SSIMs string `yaml:"ssims"`
}

// OutputConfig lists optional artifacts; empty means "do not write".
type OutputConfig struct {
	PlotDir  string `yaml:"plot_dir"`
	PDF      string `yaml:"pdf"`
	PromFile string `yaml:"prom_file"`
}

// BolaConfig controls BOLA parameter derivation from the averaged ladders.
type BolaConfig struct {
	Enabled        bool    `yaml:"enabled"`
	MinBufS        float64 `yaml:"min_buf_s"`
	MaxBufS        float64 `yaml:"max_buf_s"`
	ChunkDurationS float64 `yaml:"chunk_duration_s"`
}

// PublishConfig configures the optional Redis publisher.
type PublishConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	KeyPrefix string `yaml:"key_prefix"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// DefaultConfig returns a Config pre-populated with default values.
func DefaultConfig() Config {
	return Config{
		Inputs: InputsConfig{
			Sizes: DefaultSizesFile,
			SSIMs: DefaultSSIMsFile,
		},
		Rungs: DefaultRungs,
		Bola: BolaConfig{
			MinBufS:        DefaultMinBufS,
			MaxBufS:        DefaultMaxBufS,
			ChunkDurationS: DefaultChunkDurationS,
		},
		Publish: PublishConfig{KeyPrefix: DefaultKeyPrefix},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads and parses the YAML config file at path on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate checks required fields and enum values.
func (c *Config) Validate() error {
	if c.Inputs.Sizes == "" {
		return fmt.Errorf("inputs.sizes is required")
	}
	if c.Inputs.SSIMs == "" {
		return fmt.Errorf("inputs.ssims is required")
	}
	if c.Rungs <= 0 {
		return fmt.Errorf("rungs must be positive, got %d", c.Rungs)
	}
	if c.Bola.Enabled {
		if c.Bola.ChunkDurationS <= 0 {
			return fmt.Errorf("bola.chunk_duration_s must be positive")
		}
		if c.Bola.MinBufS <= 0 || c.Bola.MaxBufS <= c.Bola.MinBufS {
			return fmt.Errorf("bola buffer must satisfy 0 < min_buf_s < max_buf_s (got %g, %g)", c.Bola.MinBufS, c.Bola.MaxBufS)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}
