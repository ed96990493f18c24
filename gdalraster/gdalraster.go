// Package gdalraster opens rasters and coordinate reference systems through
// GDAL for the geocsv pipeline.
package gdalraster

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/tingold/geocsv"
)

var registerOnce sync.Once

// Opener opens GeoTIFFs and any other raster format GDAL can read.
type Opener struct{}

// NewOpener registers the GDAL drivers and returns an Opener.
func NewOpener() *Opener {
	registerOnce.Do(godal.RegisterAll)
	return &Opener{}
}

// Open opens path read-only.
func (o *Opener) Open(path string) (geocsv.Raster, error) {
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		return nil, err
	}
	bands := ds.Bands()
	if len(bands) == 0 {
		_ = ds.Close()
		return nil, fmt.Errorf("%s has no raster band", path)
	}
	return &Dataset{ds: ds, band: bands[0], path: path}, nil
}

// Dataset is an open GDAL dataset read through its first band.
type Dataset struct {
	ds   *godal.Dataset
	band godal.Band
	path string
}

// Size returns the raster width and height.
func (d *Dataset) Size() (int, int) {
	st := d.ds.Structure()
	return st.SizeX, st.SizeY
}

// GeoTransform returns the dataset's affine transform.
func (d *Dataset) GeoTransform() ([6]float64, error) {
	return d.ds.GeoTransform()
}

// SpatialRef returns the dataset's reference system, or nil when it has none.
func (d *Dataset) SpatialRef() geocsv.SpatialRef {
	sr := d.ds.SpatialRef()
	if sr == nil {
		return nil
	}
	return &SpatialRef{sr: sr}
}

// ReadStrip reads rowCount full rows of band starting at rowOffset.
func (d *Dataset) ReadStrip(band, rowOffset, rowCount int, buf []float64) error {
	bands := d.ds.Bands()
	if band < 1 || band > len(bands) {
		return fmt.Errorf("%s: band %d out of range [1,%d]", d.path, band, len(bands))
	}
	width := d.ds.Structure().SizeX
	if len(buf) < width*rowCount {
		return fmt.Errorf("%s: buffer holds %d values, need %d", d.path, len(buf), width*rowCount)
	}
	return bands[band-1].Read(0, rowOffset, buf, width, rowCount)
}

// NoData returns the first band's no-data value.
func (d *Dataset) NoData() geocsv.NoData {
	v, ok := d.band.NoData()
	if !ok {
		return geocsv.NoData{}
	}
	return geocsv.NoDataValue(v)
}

// PixelType returns the first band's pixel type.
func (d *Dataset) PixelType() geocsv.PixelType {
	return PixelType(d.band.Structure().DataType)
}

// Close closes the dataset.
func (d *Dataset) Close() error {
	return d.ds.Close()
}

// PixelType maps a GDAL data type to its geocsv class.
func PixelType(dt godal.DataType) geocsv.PixelType {
	switch dt {
	case godal.Byte:
		return geocsv.PixelByte
	case godal.Int16, godal.UInt16:
		return geocsv.PixelInt16
	case godal.Int32, godal.UInt32:
		return geocsv.PixelInt32
	case godal.Float32:
		return geocsv.PixelFloat32
	case godal.Float64:
		return geocsv.PixelFloat64
	default:
		return geocsv.PixelOther
	}
}

// SpatialRef wraps a GDAL spatial reference.
type SpatialRef struct {
	sr *godal.SpatialRef
}

// Geographic reports whether the system is longitude/latitude.
func (s *SpatialRef) Geographic() bool {
	return s.sr.Geographic()
}

// ToGeographic builds the transform to the geographic system of the same
// datum. Web Mercator is handled in pure Go.
func (s *SpatialRef) ToGeographic() (geocsv.Transformer, error) {
	if s.sr.AuthorityName("PROJCS") == "EPSG" && s.sr.AuthorityCode("PROJCS") == "3857" {
		return geocsv.WebMercator.ToGeographic()
	}

	code := 4326
	if s.sr.AuthorityName("GEOGCS") == "EPSG" {
		if c, err := strconv.Atoi(s.sr.AuthorityCode("GEOGCS")); err == nil && c > 0 {
			code = c
		}
	}
	geog, err := godal.NewSpatialRefFromEPSG(code)
	if err != nil {
		return nil, fmt.Errorf("geographic system EPSG:%d: %w", code, err)
	}
	trn, err := godal.NewTransform(s.sr, geog)
	if err != nil {
		geog.Close()
		return nil, fmt.Errorf("transform to EPSG:%d: %w", code, err)
	}
	return &Transform{trn: trn, geog: geog}, nil
}

// Transform reprojects planar coordinates with GDAL.
type Transform struct {
	trn  *godal.Transform
	geog *godal.SpatialRef
	z    []float64
	ok   []bool
}

// Transform converts xs, ys in place. Any point that fails aborts the batch.
func (t *Transform) Transform(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%d x values for %d y values", len(xs), len(ys))
	}
	if cap(t.z) < len(xs) {
		t.z = make([]float64, len(xs))
		t.ok = make([]bool, len(xs))
	}
	z, ok := t.z[:len(xs)], t.ok[:len(xs)]
	for i := range z {
		z[i] = 0
	}
	if err := t.trn.TransformEx(xs, ys, z, ok); err != nil {
		return err
	}
	for i, good := range ok {
		if !good {
			return fmt.Errorf("point %d (%f, %f) could not be transformed", i, xs[i], ys[i])
		}
	}
	return nil
}

// Close releases the GDAL transform and its target system.
func (t *Transform) Close() error {
	t.trn.Close()
	t.geog.Close()
	return nil
}
