// Package render groups the map rendering packages.
//
// # Overview
//
// A render turns a [graph.Document] into a raster map in three layers:
//
//   - [style]: load color buckets, line scale and stroke styles
//   - [mapview]: a static web-mercator viewport with vector layers
//     (circles, polylines, regular-polygon markers) drawn over basemap tiles
//   - [sink]: output encoders (PNG, the JSON image wrapper, GeoJSON)
//
// The [pipeline] package wires these together with the input document and
// the tile fetcher.
//
// [graph.Document]: github.com/matzehuels/trafficmap/pkg/graph.Document
// [style]: github.com/matzehuels/trafficmap/pkg/render/style
// [mapview]: github.com/matzehuels/trafficmap/pkg/render/mapview
// [sink]: github.com/matzehuels/trafficmap/pkg/render/sink
// [pipeline]: github.com/matzehuels/trafficmap/pkg/pipeline
package render
