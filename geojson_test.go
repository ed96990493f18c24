package geocsv

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestGeoJSONSeqSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewGeoJSONSeqSink(&buf)
	if err := s.WriteHeader(testHandles()); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRow(orb.Point{1.5, -2}, []float64{42.6, 0.25}); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	if err := s.WriteRow(orb.Point{3, 4}, []float64{1, math.NaN()}); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	f, err := geojson.UnmarshalFeature([]byte(lines[0]))
	if err != nil {
		t.Fatalf("UnmarshalFeature failed: %v", err)
	}
	if pt, ok := f.Geometry.(orb.Point); !ok || pt != (orb.Point{1.5, -2}) {
		t.Errorf("unexpected geometry %v", f.Geometry)
	}
	if v := f.Properties.MustFloat64("elev"); v != 43 {
		t.Errorf("expected elev 43, got %v", v)
	}
	if v := f.Properties.MustFloat64("rain"); v != 0.25 {
		t.Errorf("expected rain 0.25, got %v", v)
	}

	f, err = geojson.UnmarshalFeature([]byte(lines[1]))
	if err != nil {
		t.Fatalf("UnmarshalFeature failed: %v", err)
	}
	if v, ok := f.Properties["rain"]; !ok || v != nil {
		t.Errorf("expected null rain, got %v", v)
	}
}

func TestRun_GeoJSONSeq(t *testing.T) {
	a := newMemRaster(3, 2, PixelByte, func(c, r int) float64 { return float64(c) })
	a.nodata = NoDataValue(0)
	dir, opener := rasterDir(t, map[string]*memRaster{"cls_v2.tif": a})

	sum, err := New(Config{Opener: opener, Format: FormatGeoJSONSeq, Logger: quietLogger()}).
		Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.Rows != 4 || sum.Suppressed != 2 {
		t.Errorf("unexpected summary %+v", sum)
	}

	lines := readLines(t, sum.Output)
	if len(lines) != 4 {
		t.Fatalf("expected 4 features, got %d", len(lines))
	}
	f, err := geojson.UnmarshalFeature([]byte(lines[0]))
	if err != nil {
		t.Fatal(err)
	}
	if f.Properties.MustFloat64("cls") != 1 {
		t.Errorf("unexpected properties %v", f.Properties)
	}
}
