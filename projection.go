package geocsv

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Geographic is a SpatialRef for rasters already in longitude/latitude.
var Geographic SpatialRef = geographicRef{}

// WebMercator is a SpatialRef for EPSG:3857 rasters, projected to WGS84
// without going through GDAL.
var WebMercator SpatialRef = projectionRef{name: "EPSG:3857", proj: project.Mercator.ToWGS84}

type geographicRef struct{}

func (geographicRef) Geographic() bool { return true }

func (geographicRef) ToGeographic() (Transformer, error) { return identity{}, nil }

type identity struct{}

func (identity) Transform(xs, ys []float64) error { return nil }
func (identity) Close() error                     { return nil }

// ProjectionRef returns a SpatialRef whose transform applies proj to each
// point. name is only used in error messages.
func ProjectionRef(name string, proj orb.Projection) SpatialRef {
	return projectionRef{name: name, proj: proj}
}

type projectionRef struct {
	name string
	proj orb.Projection
}

func (p projectionRef) Geographic() bool { return false }

func (p projectionRef) ToGeographic() (Transformer, error) {
	if p.proj == nil {
		return nil, fmt.Errorf("%s: no projection", p.name)
	}
	return p, nil
}

func (p projectionRef) Transform(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%s: %d x values for %d y values", p.name, len(xs), len(ys))
	}
	for i := range xs {
		pt := project.Point(orb.Point{xs[i], ys[i]}, p.proj)
		if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) || math.IsInf(pt[0], 0) || math.IsInf(pt[1], 0) {
			return fmt.Errorf("%s: point (%f, %f) has no geographic equivalent", p.name, xs[i], ys[i])
		}
		xs[i], ys[i] = pt[0], pt[1]
	}
	return nil
}

func (p projectionRef) Close() error { return nil }
