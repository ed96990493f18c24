package geocsv

import "io"

// PixelType is the storage type of a raster band, reduced to the classes that
// matter for output formatting.
type PixelType int

// Supported pixel types.
const (
	PixelOther PixelType = iota
	PixelByte
	PixelInt16
	PixelInt32
	PixelFloat32
	PixelFloat64
)

var pixelTypeNames = []string{
	"other",
	"byte",
	"short",
	"int",
	"float",
	"double",
}

// String returns the short type name ("byte", "short", "int", ...).
func (t PixelType) String() string {
	if t < 0 || int(t) >= len(pixelTypeNames) {
		return pixelTypeNames[PixelOther]
	}
	return pixelTypeNames[t]
}

// IsFloat reports whether values of this type are written with decimals.
func (t PixelType) IsFloat() bool {
	return t == PixelFloat32 || t == PixelFloat64
}

// NoData is a band's optional no-data value. The zero value declares none.
type NoData struct {
	Value float64
	Valid bool
}

// NoDataValue returns a declared no-data value.
func NoDataValue(v float64) NoData {
	return NoData{Value: v, Valid: true}
}

// Matches reports whether v is the no-data value. It is always false when no
// value is declared. A declared NaN matches NaN pixels.
func (n NoData) Matches(v float64) bool {
	if !n.Valid {
		return false
	}
	if n.Value != n.Value {
		return v != v
	}
	return v == n.Value
}

// Raster is an open single-band raster grid.
type Raster interface {
	io.Closer

	// Size returns the grid width and height in pixels.
	Size() (width, height int)

	// GeoTransform returns the six affine coefficients
	// [originX, pixelWidth, rowRotation, originY, colRotation, pixelHeight].
	GeoTransform() ([6]float64, error)

	// SpatialRef returns the raster's coordinate reference system.
	SpatialRef() SpatialRef

	// ReadStrip reads rows [rowOffset, rowOffset+rowCount) of the given band
	// (1-based), full width, into buf laid out as row*width+col.
	ReadStrip(band, rowOffset, rowCount int, buf []float64) error

	// NoData returns band 1's no-data value.
	NoData() NoData

	// PixelType returns band 1's pixel type.
	PixelType() PixelType
}

// Opener opens rasters by path.
type Opener interface {
	Open(path string) (Raster, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Raster, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Raster, error) { return f(path) }

// SpatialRef is the coordinate reference system of a raster.
type SpatialRef interface {
	// Geographic reports whether coordinates are already longitude/latitude.
	Geographic() bool

	// ToGeographic builds a transform from this system to the geographic
	// system sharing its datum.
	ToGeographic() (Transformer, error)
}

// Transformer converts planar coordinates to longitude/latitude in place.
type Transformer interface {
	io.Closer
	Transform(xs, ys []float64) error
}
