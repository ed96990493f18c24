package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tingold/geocsv"
)

// fakeRaster is a geographic in-memory raster whose value is col+row*width.
type fakeRaster struct {
	width, height int
	nodata        geocsv.NoData
}

func (r *fakeRaster) Size() (int, int)                 { return r.width, r.height }
func (r *fakeRaster) GeoTransform() ([6]float64, error) { return [6]float64{10, 1, 0, 50, 0, -1}, nil }
func (r *fakeRaster) SpatialRef() geocsv.SpatialRef     { return geocsv.Geographic }
func (r *fakeRaster) NoData() geocsv.NoData             { return r.nodata }
func (r *fakeRaster) PixelType() geocsv.PixelType       { return geocsv.PixelInt16 }
func (r *fakeRaster) Close() error                      { return nil }

func (r *fakeRaster) ReadStrip(band, rowOffset, rowCount int, buf []float64) error {
	for row := 0; row < rowCount; row++ {
		for col := 0; col < r.width; col++ {
			buf[row*r.width+col] = float64(col + (rowOffset+row)*r.width)
		}
	}
	return nil
}

// layerDir creates empty raster files and an opener serving fakes for them.
func layerDir(t *testing.T, rasters map[string]*fakeRaster) (string, geocsv.Opener) {
	t.Helper()
	dir := t.TempDir()
	for name := range rasters {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	opener := geocsv.OpenerFunc(func(path string) (geocsv.Raster, error) {
		r, ok := rasters[filepath.Base(path)]
		if !ok {
			return nil, fmt.Errorf("unknown raster %s", path)
		}
		return r, nil
	})
	return dir, opener
}

func execute(t *testing.T, opener geocsv.Opener, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opener)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvert(t *testing.T) {
	dir, opener := layerDir(t, map[string]*fakeRaster{
		"elev_srtm.tif": {width: 2, height: 2, nodata: geocsv.NoDataValue(0)},
	})

	stdout, stderr, err := execute(t, opener, "convert", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 3 rows from 1 rasters")
	assert.Contains(t, stdout, "1 nodata pixels skipped")
	assert.Contains(t, stderr, "100%")

	data, err := os.ReadFile(filepath.Join(dir, "output.csv"))
	require.NoError(t, err)
	assert.Equal(t, "x,y,elev\n11.000000,50.000000,1\n10.000000,49.000000,2\n11.000000,49.000000,3\n", string(data))
}

func TestConvert_Flags(t *testing.T) {
	dir, opener := layerDir(t, map[string]*fakeRaster{
		"a.tif": {width: 3, height: 5},
	})
	out := filepath.Join(t.TempDir(), "pixels.geojsonl")

	_, stderr, err := execute(t, opener, "convert", dir, "--quiet", "--block-height", "2",
		"--format", "GeoJSONL", "--output", out)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "%")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 15)
}

func TestConvert_ConfigFile(t *testing.T) {
	dir, opener := layerDir(t, map[string]*fakeRaster{
		"a.img": {width: 2, height: 1},
	})
	cfgPath := filepath.Join(t.TempDir(), "geocsv.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("extensions: [.img]\noutput: table.csv\n"), 0o644))

	_, _, err := execute(t, opener, "convert", dir, "-q", "--config", cfgPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "table.csv"))

	// Flags win over the file.
	_, _, err = execute(t, opener, "convert", dir, "-q", "--config", cfgPath, "--output", "other.csv")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "other.csv"))
}

func TestConvert_Errors(t *testing.T) {
	dir, opener := layerDir(t, map[string]*fakeRaster{
		"a.tif": {width: 2, height: 2},
		"b.tif": {width: 3, height: 2},
	})

	tests := []struct {
		name string
		args []string
		want error
		code int
	}{
		{"grid mismatch", []string{"convert", dir, "-q"}, geocsv.ErrGridMismatch, ExitError},
		{"empty folder", []string{"convert", t.TempDir(), "-q"}, geocsv.ErrNoInputFound, ExitError},
		{"bad format", []string{"convert", dir, "--format", "shp"}, geocsv.ErrInvalidConfig, ExitUsage},
		{"bad block height", []string{"convert", dir, "--block-height", "0"}, geocsv.ErrInvalidConfig, ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, opener, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, tt.code, exitCode(err))
		})
	}
}

func TestConvert_MissingArg(t *testing.T) {
	_, _, err := execute(t, nil, "convert")
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	dir, opener := layerDir(t, map[string]*fakeRaster{
		"elev_srtm.tif": {width: 4, height: 3, nodata: geocsv.NoDataValue(-9999)},
	})

	stdout, _, err := execute(t, opener, "inspect", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "FIELD")
	assert.Contains(t, stdout, "elev")
	assert.Contains(t, stdout, "short")
	assert.Contains(t, stdout, "-9999")
	assert.Contains(t, stdout, "4x3")
	assert.Contains(t, stdout, "Grid: 4x3, pixel 1x-1, geographic: true")
	assert.Contains(t, stdout, "Bounds: 10,48 13,50")
}

func TestInspect_GridMismatch(t *testing.T) {
	dir, opener := layerDir(t, map[string]*fakeRaster{
		"a.tif": {width: 2, height: 2},
		"b.tif": {width: 2, height: 3},
	})
	stdout, _, err := execute(t, opener, "inspect", dir)
	assert.ErrorIs(t, err, geocsv.ErrGridMismatch)
	assert.Contains(t, stdout, "FIELD")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, exitCode(nil))
	assert.Equal(t, ExitInterrupted, exitCode(fmt.Errorf("%w: interrupt", geocsv.ErrCanceled)))
	assert.Equal(t, ExitError, exitCode(errors.New("boom")))
}
