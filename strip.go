package geocsv

import "fmt"

// DefaultBlockHeight is the number of rows read per strip.
const DefaultBlockHeight = 100

// Strip holds a horizontal slice of every input raster.
type Strip struct {
	Offset int         // First global row
	Rows   int         // Number of rows
	Width  int         // Row width in pixels
	Values [][]float64 // Values[raster][row*Width+col]
}

// At returns raster i's value at local row and column.
func (s *Strip) At(i, row, col int) float64 {
	return s.Values[i][row*s.Width+col]
}

// ReadStrip reads up to rows rows starting at offset from every raster.
// rows is clamped to the rows remaining below offset.
func ReadStrip(handles []*RasterHandle, offset, rows, width, height int) (*Strip, error) {
	if remaining := height - offset; rows > remaining {
		rows = remaining
	}
	if rows <= 0 {
		return nil, fmt.Errorf("%w: offset %d is past the last row", ErrRasterRead, offset)
	}

	s := &Strip{
		Offset: offset,
		Rows:   rows,
		Width:  width,
		Values: make([][]float64, len(handles)),
	}
	for i, h := range handles {
		buf := make([]float64, width*rows)
		if err := h.Raster.ReadStrip(1, offset, rows, buf); err != nil {
			return nil, fmt.Errorf("%w %s at row %d: %w", ErrRasterRead, h.Path, offset, err)
		}
		s.Values[i] = buf
	}
	return s, nil
}

// stripBytes is the buffer size of one full strip.
func stripBytes(rasters, width, rows int) uint64 {
	return uint64(rasters) * uint64(width) * uint64(rows) * 8
}
