// Package cli implements the cobra commands of the geocsv binary.
//
// The convert and inspect subcommands live in their own files. This file
// defines the root command, the global flags and the exit code mapping.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tingold/geocsv"
	"github.com/tingold/geocsv/gdalraster"
)

// Set at build time from the main package.
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// globals holds state shared by every subcommand.
type globals struct {
	opener  geocsv.Opener
	verbose bool
}

// logger builds the slog logger the subcommands hand to the library.
// Without --verbose only warnings and errors are shown.
func (g *globals) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewRootCommand creates the root command with every subcommand registered.
// Rasters are opened through GDAL.
func NewRootCommand() *cobra.Command {
	return newRootCommand(gdalraster.NewOpener())
}

func newRootCommand(opener geocsv.Opener) *cobra.Command {
	g := &globals{opener: opener}

	rootCmd := &cobra.Command{
		Use:   "geocsv",
		Short: "Convert a folder of GeoTIFF layers into a per-pixel table",
		Long: `geocsv reads every GeoTIFF in a folder and writes one row per pixel,
holding the pixel's longitude, latitude and the value of every layer.

All layers must share the same grid. Pixels equal to a layer's nodata
value are left out of the output.`,

		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(newConvertCommand(g))
	rootCmd.AddCommand(newInspectCommand(g))

	return rootCmd
}

// Execute runs the root command and exits with a non-zero code on error.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, geocsv.ErrCanceled):
		return ExitInterrupted
	case errors.Is(err, geocsv.ErrInvalidConfig):
		return ExitUsage
	default:
		return ExitError
	}
}
