package sink

import (
	"encoding/json"

	geojson "github.com/paulmach/go.geojson"

	"github.com/matzehuels/trafficmap/pkg/errors"
	"github.com/matzehuels/trafficmap/pkg/geo"
	"github.com/matzehuels/trafficmap/pkg/graph"
	"github.com/matzehuels/trafficmap/pkg/render/style"
)

// Feature kinds written to the "kind" property.
const (
	KindNode = "node"
	KindLink = "link"
)

// RenderGeoJSON exports the document's nodes and links as a FeatureCollection
// in EPSG:4326. Link features carry their load, bucket and color.
func RenderGeoJSON(doc *graph.Document, tr geo.Transformer) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	loads := doc.LoadIndex()

	for i, n := range doc.Graph.Nodes {
		p, err := tr.ToWGS84(n.Geometry.Center)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "node %d", i)
		}
		f := geojson.NewPointFeature([]float64{p.Lon(), p.Lat()})
		setID(f, n.ID)
		f.SetProperty("kind", KindNode)
		f.SetProperty("radius", n.Geometry.Radius)
		fc.AddFeature(f)
	}

	for i, l := range doc.Graph.Links {
		path, err := tr.Path(l.Geometry.Coordinates)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "link %d", i)
		}
		coords := make([][]float64, len(path))
		for j, p := range path {
			coords[j] = []float64{p.Lon(), p.Lat()}
		}
		load := loads.Lookup(l.ID)
		f := geojson.NewLineStringFeature(coords)
		setID(f, l.ID)
		f.SetProperty("kind", KindLink)
		if load != nil {
			f.SetProperty("load", *load)
		} else {
			f.SetProperty("load", nil)
		}
		f.SetProperty("bucket", string(style.BucketFor(load)))
		f.SetProperty("color", style.LoadColor(load))
		fc.AddFeature(f)
	}

	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode geojson")
	}
	return b, nil
}

func setID(f *geojson.Feature, id graph.ID) {
	if !id.IsZero() {
		f.ID = json.RawMessage(id)
	}
}
