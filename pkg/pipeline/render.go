package pipeline

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/trafficmap/pkg/errors"
	"github.com/matzehuels/trafficmap/pkg/geo"
	"github.com/matzehuels/trafficmap/pkg/graph"
	"github.com/matzehuels/trafficmap/pkg/render/mapview"
	"github.com/matzehuels/trafficmap/pkg/render/style"
)

// InitMap creates the canvas for doc: centered on the mean node position,
// then fit to the bounds of the path through all node centers in input order.
// maxZoom caps the fitted zoom; zero means [mapview.DefaultMaxZoom].
func InitMap(doc *graph.Document, tr geo.Transformer, maxZoom int) (*mapview.Map, error) {
	mean, ok := doc.MeanCenter()
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph has no nodes")
	}
	center, err := tr.ToWGS84(mean)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "map center")
	}
	path, err := tr.Path(doc.NodeCenters())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "node path")
	}

	if maxZoom <= 0 {
		maxZoom = mapview.DefaultMaxZoom
	}
	m := mapview.New(doc.Image.Width, doc.Image.Height, center, mapview.WithMaxZoom(maxZoom))
	m.FitBounds(geo.Bound(path))
	return m, nil
}

// NodeLayers returns one circle per node, in input order. Radius is in
// canvas pixels, not meters, so node size does not change with zoom.
func NodeLayers(doc *graph.Document, tr geo.Transformer) ([]mapview.Layer, error) {
	layers := make([]mapview.Layer, 0, len(doc.Graph.Nodes))
	for i, n := range doc.Graph.Nodes {
		p, err := tr.ToWGS84(n.Geometry.Center)
		if err != nil {
			return layers, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "node %d", i)
		}
		layers = append(layers, mapview.Circle{
			Center: p,
			Radius: n.Geometry.Radius,
			Stroke: style.NodeStroke(),
		})
	}
	return layers, nil
}

// LinkLayers returns, for each link in input order, its polyline colored by
// load followed by its direction markers. It also reports the marker count.
func LinkLayers(doc *graph.Document, tr geo.Transformer) ([]mapview.Layer, int, error) {
	loads := doc.LoadIndex()
	scale := style.Scale(doc.Image.Width)

	var (
		layers []mapview.Layer
		arrows int
	)
	for i, l := range doc.Graph.Links {
		path, err := tr.Path(l.Geometry.Coordinates)
		if err != nil {
			return layers, arrows, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "link %d", i)
		}
		layers = append(layers, mapview.PolyLine{
			Path:   path,
			Stroke: style.LinkStroke(loads.Lookup(l.ID), scale),
		})
		markers := Arrows(path, scale)
		layers = append(layers, markers...)
		arrows += len(markers)
	}
	return layers, arrows, nil
}

// Arrows returns one triangle per segment of path, placed on the segment's
// end point. Each is rotated by the geodesic azimuth from the end point back
// to the start point plus 90°, which puts the tip along the direction of
// travel.
func Arrows(path orb.LineString, scale float64) []mapview.Layer {
	if len(path) < 2 {
		return nil
	}
	out := make([]mapview.Layer, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		out = append(out, mapview.RegularPolygon{
			Center:   path[i],
			Sides:    ArrowSides,
			Radius:   style.ArrowRadius(scale),
			Rotation: geo.Azimuth(path[i], path[i-1]) + 90,
			Stroke:   style.ArrowStroke(),
		})
	}
	return out
}
