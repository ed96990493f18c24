package geocsv

import "github.com/paulmach/orb"

// emitter turns strips into sink rows.
type emitter struct {
	frame    *GeoFrame
	handles  []*RasterHandle
	sink     Sink
	progress *progressTracker

	xs, ys []float64
	values []float64

	rows       int
	suppressed int
}

func newEmitter(frame *GeoFrame, handles []*RasterHandle, sink Sink, progress *progressTracker) *emitter {
	return &emitter{
		frame:    frame,
		handles:  handles,
		sink:     sink,
		progress: progress,
		xs:       make([]float64, frame.Width),
		ys:       make([]float64, frame.Width),
		values:   make([]float64, len(handles)),
	}
}

// emit writes every pixel of s that holds data in all rasters. Coordinates
// are projected a row at a time.
func (e *emitter) emit(s *Strip) error {
	for row := 0; row < s.Rows; row++ {
		global := s.Offset + row
		for col := 0; col < s.Width; col++ {
			p := e.frame.Planar(col, global)
			e.xs[col], e.ys[col] = p[0], p[1]
		}
		if err := e.frame.Project(e.xs[:s.Width], e.ys[:s.Width]); err != nil {
			return err
		}

	pixels:
		for col := 0; col < s.Width; col++ {
			for i, h := range e.handles {
				v := s.At(i, row, col)
				if h.NoData.Matches(v) {
					e.suppressed++
					continue pixels
				}
				e.values[i] = v
			}
			if err := e.sink.WriteRow(orb.Point{e.xs[col], e.ys[col]}, e.values); err != nil {
				return err
			}
			e.rows++
		}

		e.progress.rowDone(global)
	}
	return nil
}
