package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/trafficmap/pkg/tiles"
)

// renderFlags holds the render overrides. A flag only overrides the
// configuration when it was set on the command line.
type renderFlags struct {
	input       string
	outputDir   string
	supersample int
	encoding    string
	geojson     bool
	provider    string
	tileURL     string
	maxZoom     int
	noCache     bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "input document (default ./data.json)")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "output directory (default ./result_data)")
	fs.IntVar(&f.supersample, "supersample", 0, "overlay supersampling factor (default 5)")
	fs.StringVar(&f.encoding, "encoding", "", "image encoding in result.json: repr (default), base64")
	fs.BoolVar(&f.geojson, "geojson", false, "also write result.geojson")
	fs.StringVarP(&f.provider, "tiles", "t", "", "basemap provider: positron (default), osm, none")
	fs.StringVar(&f.tileURL, "tile-url", "", "custom tile URL template with {z}, {x}, {y} and optional {s}")
	fs.IntVar(&f.maxZoom, "max-zoom", 0, "maximum zoom level")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the tile cache")
}

// apply overlays the flags that were set onto cfg.
func (f *renderFlags) apply(cmd *cobra.Command, cfg *Config) {
	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.Input = f.input
	}
	if fs.Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if fs.Changed("supersample") {
		cfg.Supersample = f.supersample
	}
	if fs.Changed("encoding") {
		cfg.ImageEncoding = f.encoding
	}
	if fs.Changed("geojson") {
		cfg.GeoJSON = f.geojson
	}
	if fs.Changed("tiles") {
		cfg.Tiles.Provider = f.provider
		cfg.Tiles.URL = ""
	}
	if fs.Changed("tile-url") {
		cfg.Tiles.URL = f.tileURL
	}
	if fs.Changed("max-zoom") {
		cfg.Tiles.MaxZoom = f.maxZoom
	}
	if f.noCache {
		cfg.Cache.Backend = backendNone
	}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a traffic document to PNG and JSON",
		Long: `Render reads a document with graph geometry, loads and image size, draws it
over a basemap and writes result.png and result.json to the output directory.`,
		Example: `  trafficmap render -i data.json -o out/
  trafficmap render --tiles none --geojson
  trafficmap render --tile-url 'https://tile.example.com/{z}/{x}/{y}.png'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, flags *renderFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg := c.Config
	flags.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner, closeCache, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("close tile cache", "err", err)
		}
	}()

	opts := cfg.PipelineOptions()
	opts.Logger = logger

	prog := newProgress(logger)
	var spin *Spinner
	if !runner.Tiles.Provider().Offline() && logger.GetLevel() > LogDebug {
		spin = newSpinner(ctx, "Fetching basemap tiles")
		opts.OnTile = func(t tiles.Tile) { spin.SetMessage("Fetching basemap tiles (%s)", t) }
		spin.Start()
	}

	result, err := runner.Execute(ctx, cfg.Input, cfg.OutputDir, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("render complete", "files", len(result.Paths))

	printSuccess("Rendered %s", cfg.Input)
	printStats(result.Stats)
	for _, p := range result.Paths {
		printFile(p)
	}
	return nil
}
