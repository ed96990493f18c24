package geocsv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// memRaster is an in-memory Raster used by the tests.
type memRaster struct {
	width, height int
	gt            [6]float64
	sr            SpatialRef
	nodata        NoData
	typ           PixelType
	data          []float64

	readErr error
	reads   int
	maxRows int
	closed  bool
}

func (m *memRaster) Size() (int, int)                 { return m.width, m.height }
func (m *memRaster) GeoTransform() ([6]float64, error) { return m.gt, nil }
func (m *memRaster) SpatialRef() SpatialRef            { return m.sr }
func (m *memRaster) NoData() NoData                    { return m.nodata }
func (m *memRaster) PixelType() PixelType              { return m.typ }

func (m *memRaster) ReadStrip(band, rowOffset, rowCount int, buf []float64) error {
	if m.readErr != nil {
		return m.readErr
	}
	if band != 1 {
		return fmt.Errorf("band %d", band)
	}
	if rowOffset < 0 || rowOffset+rowCount > m.height {
		return fmt.Errorf("rows [%d,%d) out of range", rowOffset, rowOffset+rowCount)
	}
	m.reads++
	if rowCount > m.maxRows {
		m.maxRows = rowCount
	}
	copy(buf, m.data[rowOffset*m.width:(rowOffset+rowCount)*m.width])
	return nil
}

func (m *memRaster) Close() error {
	m.closed = true
	return nil
}

// newMemRaster returns a geographic raster with origin (0,0) and resolution
// (1,-1) whose pixel (col,row) holds fill(col,row).
func newMemRaster(width, height int, typ PixelType, fill func(col, row int) float64) *memRaster {
	m := &memRaster{
		width:  width,
		height: height,
		gt:     [6]float64{0, 1, 0, 0, 0, -1},
		sr:     Geographic,
		typ:    typ,
		data:   make([]float64, width*height),
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			m.data[row*width+col] = fill(col, row)
		}
	}
	return m
}

// rasterDir creates an empty file per raster name in a temp dir and returns
// the dir and an Opener serving the given rasters by base name.
func rasterDir(t *testing.T, rasters map[string]*memRaster) (string, Opener) {
	t.Helper()
	dir := t.TempDir()
	for name := range rasters {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	opener := OpenerFunc(func(path string) (Raster, error) {
		r, ok := rasters[filepath.Base(path)]
		if !ok {
			return nil, errors.New("not a raster")
		}
		return r, nil
	})
	return dir, opener
}

// failingTransformer rejects every batch.
type failingTransformer struct{}

func (failingTransformer) Transform(xs, ys []float64) error { return errors.New("no datum") }
func (failingTransformer) Close() error                     { return nil }

type failingRef struct{ buildErr error }

func (f failingRef) Geographic() bool { return false }
func (f failingRef) ToGeographic() (Transformer, error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return failingTransformer{}, nil
}
