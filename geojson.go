package geocsv

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSONSeqSink writes one GeoJSON point feature per line. Values that are
// not finite are written as null. When two rasters share a field name the
// later one's value is kept.
type GeoJSONSeqSink struct {
	c      io.Closer
	bw     *bufio.Writer
	fields []string
	types  []PixelType
}

// CreateGeoJSONSeqSink creates or truncates the file at path.
func CreateGeoJSONSeqSink(path string) (*GeoJSONSeqSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	s := NewGeoJSONSeqSink(f)
	s.c = f
	return s, nil
}

// NewGeoJSONSeqSink writes to w. Close does not close w.
func NewGeoJSONSeqSink(w io.Writer) *GeoJSONSeqSink {
	return &GeoJSONSeqSink{bw: bufio.NewWriter(w)}
}

// WriteHeader records the property names. Nothing is written.
func (s *GeoJSONSeqSink) WriteHeader(handles []*RasterHandle) error {
	s.fields = Fields(handles)
	s.types = make([]PixelType, len(handles))
	for i, h := range handles {
		s.types[i] = h.Type
	}
	return nil
}

// WriteRow writes one feature line.
func (s *GeoJSONSeqSink) WriteRow(pt orb.Point, values []float64) error {
	if len(values) != len(s.types) {
		return fmt.Errorf("%w: %d values for %d columns", ErrOutputWrite, len(values), len(s.types))
	}

	f := geojson.NewFeature(pt)
	for i, v := range values {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			f.Properties[s.fields[i]] = nil
		case s.types[i].IsFloat():
			f.Properties[s.fields[i]] = v
		default:
			f.Properties[s.fields[i]] = int64(math.Round(v))
		}
	}

	data, err := f.MarshalJSON()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	if _, err := s.bw.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	if err := s.bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return nil
}

// Flush writes buffered lines.
func (s *GeoJSONSeqSink) Flush() error {
	if err := s.bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return nil
}

// Close flushes and closes the file.
func (s *GeoJSONSeqSink) Close() error {
	err := s.Flush()
	if s.c != nil {
		if cerr := s.c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrOutputWrite, cerr)
		}
		s.c = nil
	}
	return err
}
