package geocsv

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config configures a conversion.
type Config struct {
	// BlockHeight is the number of rows read per strip (default: 100).
	BlockHeight int `json:"block_height" yaml:"block_height"`

	// Extensions are the raster file extensions to pick up
	// (default: .tif, .tiff).
	Extensions []string `json:"extensions" yaml:"extensions"`

	// Output is the output file name, relative to the input folder unless
	// absolute (default: output.<format>).
	Output string `json:"output" yaml:"output"`

	// Format is the output format (default: csv).
	Format Format `json:"format" yaml:"format"`

	// Opener opens the input rasters. Required.
	Opener Opener `json:"-" yaml:"-"`

	// NewSink creates the output sink (default: CreateSink).
	NewSink func(path string, format Format) (Sink, error) `json:"-" yaml:"-"`

	// Progress receives the percentage of rows processed.
	Progress Progress `json:"-" yaml:"-"`

	// Logger for debug/info messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.BlockHeight == 0 {
		c.BlockHeight = DefaultBlockHeight
	}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
	if c.Format == "" {
		c.Format = FormatCSV
	}
	if c.NewSink == nil {
		c.NewSink = CreateSink
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.BlockHeight < 0 {
		return fmt.Errorf("%w: block height %d must be positive", ErrInvalidConfig, c.BlockHeight)
	}
	if c.Format != "" && !c.Format.IsValid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if c.Opener == nil {
		return fmt.Errorf("%w: no raster opener", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if cfg.Format, err = ParseFormat(string(cfg.Format)); err != nil {
		return cfg, err
	}
	return cfg, nil
}
