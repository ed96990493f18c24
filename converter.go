package geocsv

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Converter streams a folder of rasters into one output file.
//
// Usage:
//
//	conv := geocsv.New(geocsv.Config{Opener: gdalraster.NewOpener()})
//	sum, err := conv.Run(ctx, "/data/layers")
//	fmt.Println(sum.Rows, "rows written to", sum.Output)
type Converter struct {
	cfg    Config
	logger *slog.Logger
	state  atomic.Int32
}

// New creates a Converter with the given configuration.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// State returns the current stage of the run.
func (c *Converter) State() State {
	return State(c.state.Load())
}

func (c *Converter) setState(s State) {
	c.state.Store(int32(s))
	c.logger.Debug("conversion state", "state", s)
}

// Run converts every raster in dir. Any failure aborts the whole run; a
// partially written output file is left in place. The context is checked
// before each strip.
func (c *Converter) Run(ctx context.Context, dir string) (*Summary, error) {
	sum, err := c.run(ctx, dir)
	if err != nil {
		c.setState(StateAborted)
		return nil, err
	}
	c.setState(StateDone)
	c.logger.Info("conversion done",
		"output", sum.Output, "rows", sum.Rows, "suppressed", sum.Suppressed, "strips", sum.Strips)
	return sum, nil
}

func (c *Converter) run(ctx context.Context, dir string) (sum *Summary, err error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	c.setState(StateLoading)
	handles, err := LoadRasters(dir, c.cfg.Extensions, c.cfg.Opener)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := CloseRasters(handles); cerr != nil {
			c.logger.Warn("closing rasters", "error", cerr)
		}
	}()

	frame, err := NewGeoFrame(handles[0].Raster)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", handles[0].Path, err)
	}
	defer frame.Close()

	if err := frame.CheckGrid(handles); err != nil {
		return nil, err
	}

	bound := frame.Bound()
	c.logger.Info("converting rasters",
		"dir", dir,
		"rasters", len(handles),
		"width", frame.Width,
		"height", frame.Height,
		"geographic", frame.Geographic,
		"min", bound.Min,
		"max", bound.Max,
		"strip_buffer", humanize.IBytes(stripBytes(len(handles), frame.Width, c.cfg.BlockHeight)))

	out := OutputPath(dir, c.cfg.Output, c.cfg.Format)
	sink, err := c.cfg.NewSink(out, c.cfg.Format)
	if err != nil {
		return nil, err
	}
	defer func() {
		if sink == nil {
			return
		}
		if cerr := sink.Close(); cerr != nil {
			c.logger.Warn("closing output", "output", out, "error", cerr)
		}
	}()

	if err := sink.WriteHeader(handles); err != nil {
		return nil, err
	}
	if err := sink.Flush(); err != nil {
		return nil, err
	}
	c.setState(StateReady)

	sum = &Summary{Output: out, Rasters: len(handles)}
	em := newEmitter(frame, handles, sink, newProgressTracker(frame.Height, c.cfg.Progress))

	c.setState(StateStreaming)
	for offset := 0; offset < frame.Height; {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w at row %d: %w", ErrCanceled, offset, err)
		}

		strip, err := ReadStrip(handles, offset, c.cfg.BlockHeight, frame.Width, frame.Height)
		if err != nil {
			return nil, err
		}
		if err := em.emit(strip); err != nil {
			return nil, err
		}
		if err := sink.Flush(); err != nil {
			return nil, err
		}

		c.logger.Debug("strip written", "offset", offset, "rows", strip.Rows, "total_rows", em.rows)
		sum.Strips++
		offset += strip.Rows
	}

	c.setState(StateFinalizing)
	s := sink
	sink = nil
	if err := s.Close(); err != nil {
		return nil, err
	}

	sum.Rows = em.rows
	sum.Suppressed = em.suppressed
	return sum, nil
}
