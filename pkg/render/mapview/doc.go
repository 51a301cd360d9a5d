// Package mapview renders static web-mercator map images.
//
// A [Map] is a fixed-size viewport over the slippy-map tile pyramid. Vector
// layers ([Circle], [PolyLine], [RegularPolygon]) are added in draw order
// and rasterized by [Map.Render] over basemap tiles from a [tiles.Source]:
//
//	m := mapview.New(300, 300, center)
//	m.FitBounds(bounds)
//	m.Add(mapview.PolyLine{Path: path, Stroke: style.LinkStroke(load, 1)})
//	img, err := m.Render(ctx, src, mapview.WithSupersample(5))
//
// # Coordinates
//
// Layers take WGS84 points in [lon, lat] order. Pixel positions follow the
// usual web map convention: integer zoom levels, 256 pixel tiles, and a
// pixel origin rounded to whole pixels so tiles land on the pixel grid.
//
// # Supersampling
//
// Vector layers are drawn on a canvas k times larger than the output and
// downsampled with a bilinear kernel before being composited over the
// basemap. Tiles are drawn at their native resolution. Sizes given to layers
// (radii, stroke weights, dash lengths) are in output pixels.
//
// [tiles.Source]: github.com/matzehuels/trafficmap/pkg/tiles.Source
package mapview
