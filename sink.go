package geocsv

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
)

// Sink receives the emitted rows of a conversion.
type Sink interface {
	// WriteHeader declares the value columns, one per raster, in order.
	WriteHeader(handles []*RasterHandle) error

	// WriteRow appends one pixel: its lon/lat and one value per raster.
	WriteRow(pt orb.Point, values []float64) error

	// Flush makes every row written so far durable.
	Flush() error

	// Close flushes and releases the destination.
	Close() error
}

// Format names an output format.
type Format string

// Supported output formats.
const (
	FormatCSV        Format = "csv"
	FormatFlatGeobuf Format = "fgb"
	FormatGeoJSONSeq Format = "geojsonl"
)

// IsValid reports whether f is a supported format.
func (f Format) IsValid() bool {
	switch f {
	case FormatCSV, FormatFlatGeobuf, FormatGeoJSONSeq:
		return true
	default:
		return false
	}
}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatCSV, nil
	}
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unknown format %q (valid: csv, fgb, geojsonl)", ErrInvalidConfig, s)
	}
	return f, nil
}

// OutputPath returns the destination inside dir. An empty name gives
// "output" plus the format's extension; a relative name is resolved
// against dir.
func OutputPath(dir, name string, f Format) string {
	if name == "" {
		name = "output" + f.Ext()
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// CreateSink opens the sink for format f at path, truncating any file there.
func CreateSink(path string, f Format) (Sink, error) {
	switch f {
	case FormatCSV, "":
		return CreateCSVSink(path)
	case FormatFlatGeobuf:
		return CreateFGBSink(path, nil)
	case FormatGeoJSONSeq:
		return CreateGeoJSONSeqSink(path)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, f)
	}
}
