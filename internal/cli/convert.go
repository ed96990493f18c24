package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tingold/geocsv"
)

// convertFlags holds the flag values for the convert command.
type convertFlags struct {
	config      string
	blockHeight int
	output      string
	format      string
	extensions  []string
	quiet       bool
}

func newConvertCommand(g *globals) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert <folder>",
		Short: "Write one row per pixel for every layer in a folder",
		Long: `Convert reads every raster in <folder> and writes a table with the
longitude, latitude and layer values of each pixel. Each column is named
after its file, cut at the first underscore.

Flags override the values of the --config file.

Examples:
  geocsv convert ./layers
  geocsv convert ./layers --format fgb --output /tmp/pixels.fgb
  geocsv convert ./layers --config geocsv.yaml --quiet`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runConvert(ctx, cmd, g, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "YAML configuration file")
	cmd.Flags().IntVar(&flags.blockHeight, "block-height", geocsv.DefaultBlockHeight, "Rows read per strip")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file, relative to <folder> (default: output.<format>)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Output format: csv, fgb, geojsonl (default: csv)")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "Raster file extensions (default: .tif,.tiff)")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Do not report progress")

	return cmd
}

// buildConfig merges the config file with the flags the user set.
func buildConfig(cmd *cobra.Command, flags *convertFlags) (geocsv.Config, error) {
	var cfg geocsv.Config
	if flags.config != "" {
		var err error
		if cfg, err = geocsv.LoadConfig(flags.config); err != nil {
			return cfg, err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("block-height") {
		if flags.blockHeight <= 0 {
			return cfg, fmt.Errorf("%w: --block-height must be positive", geocsv.ErrInvalidConfig)
		}
		cfg.BlockHeight = flags.blockHeight
	}
	if fs.Changed("output") {
		cfg.Output = flags.output
	}
	if fs.Changed("format") {
		f, err := geocsv.ParseFormat(flags.format)
		if err != nil {
			return cfg, err
		}
		cfg.Format = f
	}
	if fs.Changed("ext") {
		cfg.Extensions = flags.extensions
	}
	return cfg, nil
}

func runConvert(ctx context.Context, cmd *cobra.Command, g *globals, flags *convertFlags, dir string) error {
	cfg, err := buildConfig(cmd, flags)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	cfg.Opener = g.opener
	cfg.Logger = g.logger(stderr)
	if !flags.quiet {
		cfg.Progress = progressPrinter(stderr)
	}

	sum, err := geocsv.New(cfg).Run(ctx, dir)
	if cfg.Progress != nil {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		return err
	}

	size := "?"
	if fi, err := os.Stat(sum.Output); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s rows from %d rasters to %s (%s, %s nodata pixels skipped)\n",
		humanize.Comma(int64(sum.Rows)), sum.Rasters, sum.Output, size, humanize.Comma(int64(sum.Suppressed)))
	return nil
}

// progressPrinter rewrites a single progress line on w.
func progressPrinter(w io.Writer) geocsv.Progress {
	return func(pct int) {
		fmt.Fprintf(w, "\rConverting... %3d%%", pct)
	}
}
