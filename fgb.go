package geocsv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
)

// FGBOptions configures FlatGeobuf output.
type FGBOptions struct {
	Name        string // Layer name
	Description string // Layer description
	CRS         *CRS   // Coordinate reference system (default: WGS84)
}

// DefaultFGBOptions returns default options for FlatGeobuf output.
func DefaultFGBOptions() *FGBOptions {
	return &FGBOptions{
		Name: "pixels",
		CRS:  WGS84(),
	}
}

// FGBSink writes every row as a point feature of a FlatGeobuf layer, with one
// property column per raster. The layer has no spatial index so features are
// encoded as they arrive instead of being held until Close.
type FGBSink struct {
	c     io.Closer
	bw    *bufio.Writer
	opts  *FGBOptions
	types []PixelType

	items chan fgbItem
	done  chan error
	err   error
}

// fgbItem is either a feature to encode or a flush request.
type fgbItem struct {
	feature *writer.Feature
	flushed chan error
}

// CreateFGBSink creates or truncates the file at path.
func CreateFGBSink(path string, opts *FGBOptions) (*FGBSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	s := NewFGBSink(f, opts)
	s.c = f
	return s, nil
}

// NewFGBSink writes to w. Close does not close w.
func NewFGBSink(w io.Writer, opts *FGBOptions) *FGBSink {
	if opts == nil {
		opts = DefaultFGBOptions()
	}
	return &FGBSink{
		bw:   bufio.NewWriter(w),
		opts: opts,
	}
}

// WriteHeader declares the property columns and starts the encoder.
func (s *FGBSink) WriteHeader(handles []*RasterHandle) error {
	if s.items != nil {
		return fmt.Errorf("%w: header already written", ErrOutputWrite)
	}

	builder := flatbuffers.NewBuilder(4096)

	header := writer.NewHeader(builder)
	header.SetGeometryType(flattypes.GeometryTypePoint)
	if s.opts.Name != "" {
		header.SetName(s.opts.Name)
	}
	if s.opts.Description != "" {
		header.SetDescription(s.opts.Description)
	}

	s.types = make([]PixelType, len(handles))
	columns := make([]*writer.Column, 0, len(handles))
	for i, h := range handles {
		s.types[i] = h.Type
		col := writer.NewColumn(builder)
		col.SetName(h.Field)
		col.SetTitle(h.Field)
		col.SetType(columnType(h.Type))
		col.SetNullable(false)
		columns = append(columns, col)
	}
	if len(columns) > 0 {
		header.SetColumns(columns)
	}

	if s.opts.CRS != nil {
		crs := writer.NewCrs(builder)
		crs.SetOrg("EPSG")
		if s.opts.CRS.Code > 0 {
			crs.SetCode(int32(s.opts.CRS.Code))
		}
		if s.opts.CRS.Name != "" {
			crs.SetName(s.opts.CRS.Name)
		}
		if s.opts.CRS.Description != "" {
			crs.SetDescription(s.opts.CRS.Description)
		}
		header.SetCrs(crs)
	}

	s.items = make(chan fgbItem)
	s.done = make(chan error, 1)
	gen := &streamGenerator{items: s.items, bw: s.bw}
	fgbWriter := writer.NewWriter(header, false, gen, nil)
	go func() {
		_, err := fgbWriter.Write(s.bw)
		if err == nil {
			err = s.bw.Flush()
		}
		s.done <- err
		close(s.done)
	}()
	return nil
}

// WriteRow encodes one point feature.
func (s *FGBSink) WriteRow(pt orb.Point, values []float64) error {
	if s.items == nil {
		return fmt.Errorf("%w: header not written", ErrOutputWrite)
	}
	if len(values) != len(s.types) {
		return fmt.Errorf("%w: %d values for %d columns", ErrOutputWrite, len(values), len(s.types))
	}

	builder := flatbuffers.NewBuilder(256)
	geom := writer.NewGeometry(builder)
	geom.SetType(flattypes.GeometryTypePoint)
	geom.SetXY([]float64{pt[0], pt[1]})

	feature := writer.NewFeature(builder)
	feature.SetGeometry(geom)
	if props := encodeValues(values, s.types); len(props) > 0 {
		feature.SetProperties(props)
	}
	return s.send(fgbItem{feature: feature})
}

// Flush waits until every feature sent so far is encoded and written.
func (s *FGBSink) Flush() error {
	if s.items == nil {
		return s.err
	}
	flushed := make(chan error, 1)
	if err := s.send(fgbItem{flushed: flushed}); err != nil {
		return err
	}
	select {
	case err := <-flushed:
		if err != nil {
			return s.fail(err)
		}
		return nil
	case err := <-s.done:
		return s.stopped(err)
	}
}

// Close ends the layer, flushes and closes the file.
func (s *FGBSink) Close() error {
	if s.items != nil {
		close(s.items)
		if err, ok := <-s.done; ok && err != nil {
			s.fail(err)
		}
		s.items = nil
	}
	err := s.err
	if s.c != nil {
		if cerr := s.c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrOutputWrite, cerr)
		}
		s.c = nil
	}
	return err
}

func (s *FGBSink) send(it fgbItem) error {
	if s.err != nil {
		return s.err
	}
	select {
	case s.items <- it:
		return nil
	case err := <-s.done:
		return s.stopped(err)
	}
}

// stopped records that the encoder returned before the layer was closed.
func (s *FGBSink) stopped(err error) error {
	if err == nil {
		err = io.ErrClosedPipe
	}
	return s.fail(err)
}

// fail records the first write error.
func (s *FGBSink) fail(err error) error {
	if s.err == nil {
		s.err = fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return s.err
}

// streamGenerator hands features from the strip loop to the FlatGeobuf
// writer. The writer asks for the next feature only after the previous one
// is written, so a flush request seen here covers every earlier feature.
type streamGenerator struct {
	items <-chan fgbItem
	bw    *bufio.Writer
}

func (g *streamGenerator) Generate() *writer.Feature {
	for it := range g.items {
		if it.flushed != nil {
			it.flushed <- g.bw.Flush()
			continue
		}
		return it.feature
	}
	return nil
}

// columnType maps a pixel type to its FlatGeobuf property type.
func columnType(t PixelType) flattypes.ColumnType {
	if t.IsFloat() {
		return flattypes.ColumnTypeDouble
	}
	return flattypes.ColumnTypeLong
}

// encodeValues encodes one feature's properties: for each column a
// little-endian uint16 index followed by the value bytes.
func encodeValues(values []float64, types []PixelType) []byte {
	var buf bytes.Buffer
	b := make([]byte, 8)
	for i, v := range values {
		binary.LittleEndian.PutUint16(b[:2], uint16(i))
		buf.Write(b[:2])

		if types[i].IsFloat() {
			binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		} else {
			binary.LittleEndian.PutUint64(b, uint64(int64(math.Round(v))))
		}
		buf.Write(b)
	}
	return buf.Bytes()
}
