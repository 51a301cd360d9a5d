// Package pkg provides the libraries behind trafficmap, a static traffic map
// renderer.
//
// # Overview
//
// Trafficmap draws a network graph with precomputed EPSG:3857 geometry onto
// a web map. Every link is colored by its load and carries direction arrows;
// every node is a dashed circle. The pkg directory is organized as:
//
//  1. [graph] - the input document (nodes, links, loads, image size)
//  2. [geo] - projection from web-mercator meters to WGS84 and bearings
//  3. [tiles] - basemap providers and the caching tile fetcher
//  4. [render] - load styles, the map viewport and output sinks
//  5. [pipeline] - orchestration (load → draw → rasterize → encode → persist)
//
// Supporting packages: [cache] (file, redis and null tile caches),
// [httputil] (retry with backoff), [io] (document import and atomic output
// writes), [errors] (coded errors) and [observability] (hooks).
//
// # Architecture
//
//	data.json
//	    ↓
//	[io] ReadDocument → [graph].Document
//	    ↓
//	[geo] EPSG:3857 → EPSG:4326
//	    ↓
//	[render/mapview] fit bounds, basemap tiles, supersampled overlay
//	    ↓
//	[render/sink] PNG, {"image": ...} JSON, GeoJSON
//	    ↓
//	result_data/
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/trafficmap/pkg/pipeline"
//	    "github.com/matzehuels/trafficmap/pkg/tiles"
//	)
//
//	runner := pipeline.NewRunner(tiles.NewSource(tiles.Positron), nil)
//	result, err := runner.Execute(ctx, "data.json", "result_data", pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Paths)
//
// For in-memory rendering (as the HTTP server does) decode the document with
// [io.ReadDocument] and call [pipeline.Runner.Render].
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/graph
// [geo]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/geo
// [tiles]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/tiles
// [render]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/render
// [render/mapview]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/render/mapview
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/httputil
// [io]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/io
// [io.ReadDocument]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/io#ReadDocument
// [pipeline.Runner.Render]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/pipeline#Runner.Render
// [errors]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/trafficmap/pkg/observability
package pkg
