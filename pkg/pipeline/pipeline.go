// Package pipeline provides the traffic map render pipeline.
//
// This package implements the load → draw → rasterize → persist pipeline used
// by the CLI and the HTTP render service, so both produce identical images
// for the same document.
//
// # Stages
//
//  1. load: read and validate the input document (file runs only)
//  2. init_map: center on the mean node position and fit the node path
//  3. draw_nodes: one circle per node
//  4. draw_links: one polyline per link plus direction markers
//  5. rasterize: compose basemap tiles and the overlay, encode PNG
//  6. encode: JSON wrapper and optional GeoJSON
//  7. persist: write the outputs (file runs only)
//
// Every stage reports to [observability.Pipeline] hooks.
//
// # Usage
//
//	runner := pipeline.NewRunner(tiles.NewSource(tiles.Positron), logger)
//	result, err := runner.Execute(ctx, "data.json", "result_data", pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Render a decoded document without touching the filesystem:
//
//	result, err := runner.Render(ctx, doc, pipeline.Options{ImageEncoding: "base64"})
//	png := result.PNG
//
// [observability.Pipeline]: github.com/matzehuels/trafficmap/pkg/observability.Pipeline
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trafficmap/pkg/errors"
	"github.com/matzehuels/trafficmap/pkg/render/mapview"
	"github.com/matzehuels/trafficmap/pkg/render/sink"
	"github.com/matzehuels/trafficmap/pkg/tiles"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and server
// =============================================================================

const (
	// DefaultSupersample is the overlay supersampling factor.
	DefaultSupersample = mapview.DefaultSupersample

	// MaxSupersample bounds the supersampling factor accepted from callers.
	MaxSupersample = 10

	// DefaultImageEncoding is how PNG bytes are written into result.json.
	DefaultImageEncoding = string(sink.EncodingRepr)

	// ArrowSides is the vertex count of link direction markers.
	ArrowSides = 3
)

// Stage names reported to hooks and logs.
const (
	StageLoad      = "load"
	StageInitMap   = "init_map"
	StageDrawNodes = "draw_nodes"
	StageDrawLinks = "draw_links"
	StageRasterize = "rasterize"
	StageEncode    = "encode"
	StagePersist   = "persist"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the render configuration.
// This struct supports JSON serialization for API requests.
type Options struct {
	Supersample   int    `json:"supersample,omitempty"`
	ImageEncoding string `json:"image_encoding,omitempty"` // repr or base64
	GeoJSON       bool   `json:"geojson,omitempty"`        // also export result.geojson

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"` // overrides the Runner's logger
	OnTile func(tiles.Tile) `json:"-"` // called after each basemap tile is placed

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Supersample == 0 {
		o.Supersample = DefaultSupersample
	}
	if o.Supersample < 1 || o.Supersample > MaxSupersample {
		return errors.New(errors.ErrCodeInvalidConfig,
			"supersample must be between 1 and %d, got %d", MaxSupersample, o.Supersample)
	}
	if o.ImageEncoding == "" {
		o.ImageEncoding = DefaultImageEncoding
	}
	if _, err := sink.ParseEncoding(o.ImageEncoding); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// PNG is the encoded image.
	PNG []byte

	// JSON is the {"image": ...} wrapper around PNG.
	JSON []byte

	// GeoJSON is the exported geometry, nil unless requested.
	GeoJSON []byte

	// Paths lists the files written by Execute.
	Paths []string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	LinkCount   int
	ArrowCount  int
	TileCount   int
	Zoom        int
	Width       int
	Height      int
	Supersample int
	Stages      map[string]time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	var d time.Duration
	for _, v := range s.Stages {
		d += v
	}
	return d
}
