// Package geo converts between the input projection and geographic
// coordinates and provides the geodesic helpers the renderer needs.
//
// Input geometry is Web Mercator (EPSG:3857) meters. Drawing happens in
// WGS84 longitude/latitude (EPSG:4326), represented as orb.Point values in
// [lon, lat] order.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/pkg/errors"
	"github.com/tidwall/geodesic"

	"github.com/matzehuels/trafficmap/pkg/graph"
)

// CRS identifiers handled by Transformer.
const (
	EPSG3857 = "EPSG:3857"
	EPSG4326 = "EPSG:4326"
)

// Transformer converts EPSG:3857 coordinates to EPSG:4326 and back.
// It holds no mutable state and is safe for concurrent use.
type Transformer struct {
	toWGS84    orb.Projection
	toMercator orb.Projection
}

// NewTransformer returns the EPSG:3857 ↔ EPSG:4326 transformer.
func NewTransformer() Transformer {
	return Transformer{
		toWGS84:    project.Mercator.ToWGS84,
		toMercator: project.WGS84.ToMercator,
	}
}

// Source returns the source CRS identifier.
func (Transformer) Source() string { return EPSG3857 }

// Target returns the target CRS identifier.
func (Transformer) Target() string { return EPSG4326 }

// ToWGS84 projects a Web Mercator coordinate to [lon, lat] degrees.
func (t Transformer) ToWGS84(c graph.Coordinate) (orb.Point, error) {
	if !finite(c[0], c[1]) {
		return orb.Point{}, errors.Errorf("non-finite coordinate (%v, %v)", c[0], c[1])
	}
	return t.toWGS84(orb.Point{c[0], c[1]}), nil
}

// ToMercator projects [lon, lat] degrees to Web Mercator meters.
func (t Transformer) ToMercator(p orb.Point) (graph.Coordinate, error) {
	if !finite(p[0], p[1]) {
		return graph.Coordinate{}, errors.Errorf("non-finite point (%v, %v)", p[0], p[1])
	}
	m := t.toMercator(p)
	return graph.Coordinate{m[0], m[1]}, nil
}

// Mercator projects p to Web Mercator without validating it. Callers that
// pass non-finite points get non-finite results.
func (t Transformer) Mercator(p orb.Point) orb.Point {
	return t.toMercator(p)
}

// Path projects a sequence of coordinates, preserving order.
func (t Transformer) Path(cs []graph.Coordinate) (orb.LineString, error) {
	ls := make(orb.LineString, len(cs))
	for i, c := range cs {
		p, err := t.ToWGS84(c)
		if err != nil {
			return nil, errors.Wrapf(err, "point %d", i)
		}
		ls[i] = p
	}
	return ls, nil
}

// Azimuth returns the forward azimuth in degrees, clockwise from north in
// [-180, 180], of the WGS84 geodesic from a to b.
func Azimuth(a, b orb.Point) float64 {
	var azi1 float64
	geodesic.WGS84.Inverse(a.Lat(), a.Lon(), b.Lat(), b.Lon(), nil, &azi1, nil)
	return azi1
}

// Bound returns the bounding box of ls. An empty line yields an empty bound.
func Bound(ls orb.LineString) orb.Bound {
	if len(ls) == 0 {
		return orb.Bound{}
	}
	return ls.Bound()
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
