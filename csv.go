package geocsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
)

// CSVSink writes rows as comma-separated text with an "x,y,<fields>" header.
type CSVSink struct {
	c      io.Closer
	w      *csv.Writer
	types  []PixelType
	record []string
	buf    []byte
}

// CreateCSVSink creates or truncates the file at path.
func CreateCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	s := NewCSVSink(f)
	s.c = f
	return s, nil
}

// NewCSVSink writes to w. Close does not close w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

// WriteHeader writes the header line.
func (s *CSVSink) WriteHeader(handles []*RasterHandle) error {
	s.types = make([]PixelType, len(handles))
	header := make([]string, 0, len(handles)+2)
	header = append(header, "x", "y")
	for i, h := range handles {
		s.types[i] = h.Type
		header = append(header, h.Field)
	}
	s.record = make([]string, len(header))
	if err := s.w.Write(header); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return nil
}

// WriteRow writes one data line.
func (s *CSVSink) WriteRow(pt orb.Point, values []float64) error {
	if len(values) != len(s.types) {
		return fmt.Errorf("%w: %d values for %d columns", ErrOutputWrite, len(values), len(s.types))
	}
	s.record[0] = s.format(AppendCoord(s.buf[:0], pt[0]))
	s.record[1] = s.format(AppendCoord(s.buf[:0], pt[1]))
	for i, v := range values {
		s.record[i+2] = s.format(AppendValue(s.buf[:0], v, s.types[i]))
	}
	if err := s.w.Write(s.record); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return nil
}

func (s *CSVSink) format(b []byte) string {
	s.buf = b
	return string(b)
}

// Flush writes buffered lines to the file.
func (s *CSVSink) Flush() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return nil
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	err := s.Flush()
	if s.c != nil {
		if cerr := s.c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrOutputWrite, cerr)
		}
		s.c = nil
	}
	return err
}
