package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trafficmap/pkg/geo"
	"github.com/matzehuels/trafficmap/pkg/graph"
	tio "github.com/matzehuels/trafficmap/pkg/io"
	"github.com/matzehuels/trafficmap/pkg/observability"
	"github.com/matzehuels/trafficmap/pkg/render/mapview"
	"github.com/matzehuels/trafficmap/pkg/render/sink"
	"github.com/matzehuels/trafficmap/pkg/tiles"
)

// Runner executes renders against a tile source.
//
// The Runner is stateless apart from its source and logger; it doesn't store
// results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Tiles       tiles.Source
	Transformer geo.Transformer
	Logger      *log.Logger
}

// NewRunner creates a runner drawing basemaps from src.
// If src is nil, renders use a plain white background.
func NewRunner(src tiles.Source, logger *log.Logger) *Runner {
	if src == nil {
		src = tiles.Blank{P: tiles.None}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Tiles:       src,
		Transformer: geo.NewTransformer(),
		Logger:      logger,
	}
}

// Execute reads the document at input, renders it and writes the outputs
// into outputDir. Nothing is written if loading or rendering fails.
func (r *Runner) Execute(ctx context.Context, input, outputDir string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	var doc *graph.Document
	loadTime, err := r.stage(ctx, StageLoad, func() (err error) {
		doc, err = tio.ImportDocument(input)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("loaded document",
		"input", input,
		"nodes", doc.NodeCount(),
		"links", doc.LinkCount(),
		"loads", len(doc.Loads),
		"duration", loadTime)

	result, err := r.Render(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.Stages[StageLoad] = loadTime

	persistTime, err := r.stage(ctx, StagePersist, func() (err error) {
		result.Paths, err = tio.WriteOutputs(outputDir, tio.Outputs{
			PNG:     result.PNG,
			JSON:    result.JSON,
			GeoJSON: result.GeoJSON,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Stats.Stages[StagePersist] = persistTime
	logger.Info("wrote outputs", "dir", outputDir, "files", len(result.Paths), "duration", persistTime)

	return result, nil
}

// Render draws doc and encodes the outputs in memory.
func (r *Runner) Render(ctx context.Context, doc *graph.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)
	src := r.Tiles
	if src == nil {
		src = tiles.Blank{P: tiles.None}
	}

	result := &Result{Stats: Stats{
		NodeCount:   doc.NodeCount(),
		LinkCount:   doc.LinkCount(),
		Width:       doc.Image.Width,
		Height:      doc.Image.Height,
		Supersample: opts.Supersample,
		Stages:      make(map[string]time.Duration),
	}}
	record := func(name string, fn func() error) error {
		d, err := r.stage(ctx, name, fn)
		result.Stats.Stages[name] = d
		return err
	}

	var m *mapview.Map
	if err := record(StageInitMap, func() (err error) {
		m, err = InitMap(doc, r.Transformer, src.Provider().MaxZoom)
		return err
	}); err != nil {
		return nil, err
	}
	result.Stats.Zoom = m.Zoom()
	logger.Debug("initialized map", "center", m.Center(), "zoom", m.Zoom())

	if err := record(StageDrawNodes, func() error {
		layers, err := NodeLayers(doc, r.Transformer)
		m.Add(layers...)
		return err
	}); err != nil {
		return nil, err
	}

	if err := record(StageDrawLinks, func() error {
		layers, arrows, err := LinkLayers(doc, r.Transformer)
		m.Add(layers...)
		result.Stats.ArrowCount = arrows
		return err
	}); err != nil {
		return nil, err
	}

	if err := record(StageRasterize, func() error {
		img, err := m.Render(ctx, src,
			mapview.WithSupersample(opts.Supersample),
			mapview.WithTileCallback(func(t tiles.Tile) {
				result.Stats.TileCount++
				if opts.OnTile != nil {
					opts.OnTile(t)
				}
			}))
		if err != nil {
			return err
		}
		result.PNG, err = sink.RenderPNG(img)
		return err
	}); err != nil {
		return nil, err
	}

	if err := record(StageEncode, func() (err error) {
		result.JSON, err = sink.RenderJSON(result.PNG, sink.Encoding(opts.ImageEncoding))
		if err != nil || !opts.GeoJSON {
			return err
		}
		result.GeoJSON, err = sink.RenderGeoJSON(doc, r.Transformer)
		return err
	}); err != nil {
		return nil, err
	}

	logger.Info("rendered map",
		"size", fmt.Sprintf("%dx%d", doc.Image.Width, doc.Image.Height),
		"zoom", result.Stats.Zoom,
		"tiles", result.Stats.TileCount,
		"arrows", result.Stats.ArrowCount,
		"bytes", len(result.PNG),
		"duration", result.Stats.Total())

	return result, nil
}

// stage runs fn between pipeline hooks and returns its duration.
func (r *Runner) stage(ctx context.Context, name string, fn func() error) (time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, name, d, err)
	if err != nil {
		return d, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
