package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tingold/geocsv"
)

func newInspectCommand(g *globals) *cobra.Command {
	var extensions []string

	cmd := &cobra.Command{
		Use:   "inspect <folder>",
		Short: "List the layers convert would read",
		Long: `Inspect opens every raster in <folder> and prints its column name,
pixel type, nodata value and size, followed by the common grid. It fails
the same way convert would when the grids do not line up.

Examples:
  geocsv inspect ./layers
  geocsv inspect ./layers --ext .tif,.img`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), g, args[0], extensions)
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "Raster file extensions (default: .tif,.tiff)")

	return cmd
}

func runInspect(w io.Writer, g *globals, dir string, extensions []string) (err error) {
	if len(extensions) == 0 {
		extensions = geocsv.DefaultExtensions
	}
	handles, err := geocsv.LoadRasters(dir, extensions, g.opener)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, geocsv.CloseRasters(handles))
	}()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tNODATA\tSIZE\tPIXELS\tFILE")
	for _, h := range handles {
		width, height := h.Raster.Size()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%s\t%s\n",
			h.Field, h.Type, formatNoData(h), width, height,
			humanize.Comma(int64(width)*int64(height)), h.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	frame, err := geocsv.NewGeoFrame(handles[0].Raster)
	if err != nil {
		return err
	}
	defer frame.Close()

	b := frame.Bound()
	fmt.Fprintf(w, "\nGrid: %dx%d, pixel %gx%g, geographic: %t\n",
		frame.Width, frame.Height, frame.PixelWidth, frame.PixelHeight, frame.Geographic)
	fmt.Fprintf(w, "Bounds: %g,%g %g,%g\n", b.Min[0], b.Min[1], b.Max[0], b.Max[1])

	return frame.CheckGrid(handles)
}

func formatNoData(h *geocsv.RasterHandle) string {
	if !h.NoData.Valid {
		return "-"
	}
	return strconv.FormatFloat(h.NoData.Value, 'g', -1, 64)
}
