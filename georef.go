package geocsv

import (
	"fmt"

	"github.com/paulmach/orb"
)

// GeoFrame is the grid geometry shared by all input rasters, taken from the
// first one.
type GeoFrame struct {
	OriginX     float64 // X of the top-left corner
	PixelWidth  float64 // X step per column
	OriginY     float64 // Y of the top-left corner
	PixelHeight float64 // Y step per row, usually negative
	Width       int
	Height      int
	Geographic  bool // Planar coordinates are already lon/lat
	CRS         SpatialRef

	trans Transformer
}

// NewGeoFrame reads the grid geometry and reference system of r. For a
// projected system it also builds the transform to geographic coordinates,
// which must be released with Close.
func NewGeoFrame(r Raster) (*GeoFrame, error) {
	gt, err := r.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("geotransform: %w", err)
	}
	w, h := r.Size()

	f := &GeoFrame{
		OriginX:     gt[0],
		PixelWidth:  gt[1],
		OriginY:     gt[3],
		PixelHeight: gt[5],
		Width:       w,
		Height:      h,
		CRS:         r.SpatialRef(),
	}
	if f.CRS == nil {
		f.CRS = Geographic
	}
	f.Geographic = f.CRS.Geographic()
	if !f.Geographic {
		f.trans, err = f.CRS.ToGeographic()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCoordinateTransform, err)
		}
	}
	return f, nil
}

// Planar returns the coordinate of pixel (col, row) in the raster's own
// reference system.
func (f *GeoFrame) Planar(col, row int) orb.Point {
	return orb.Point{
		f.OriginX + float64(col)*f.PixelWidth,
		f.OriginY + float64(row)*f.PixelHeight,
	}
}

// Project converts a batch of planar coordinates to lon/lat in place.
func (f *GeoFrame) Project(xs, ys []float64) error {
	if f.Geographic || f.trans == nil {
		return nil
	}
	if err := f.trans.Transform(xs, ys); err != nil {
		return fmt.Errorf("%w: %w", ErrCoordinateTransform, err)
	}
	return nil
}

// Bound returns the planar extent covered by pixel origins.
func (f *GeoFrame) Bound() orb.Bound {
	b := orb.Bound{Min: f.Planar(0, 0), Max: f.Planar(0, 0)}
	if f.Width > 0 && f.Height > 0 {
		b = b.Extend(f.Planar(f.Width-1, f.Height-1))
	}
	return b
}

// CheckGrid verifies that every raster has the frame's width and height.
func (f *GeoFrame) CheckGrid(handles []*RasterHandle) error {
	for _, h := range handles {
		w, ht := h.Raster.Size()
		if w != f.Width || ht != f.Height {
			return fmt.Errorf("%w: %s is %dx%d, expected %dx%d",
				ErrGridMismatch, h.Path, w, ht, f.Width, f.Height)
		}
	}
	return nil
}

// Close releases the coordinate transform.
func (f *GeoFrame) Close() error {
	if f.trans == nil {
		return nil
	}
	err := f.trans.Close()
	f.trans = nil
	return err
}
