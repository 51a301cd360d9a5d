package mapview

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/matzehuels/trafficmap/pkg/tiles"
)

// DefaultSupersample is the overlay supersampling factor.
const DefaultSupersample = 5

// maxOverlayPixels bounds the supersampled canvas; larger requests use a
// smaller factor.
const maxOverlayPixels = 64 << 20

type renderConfig struct {
	supersample int
	onTile      func(tiles.Tile)
}

// RenderOption configures Render.
type RenderOption func(*renderConfig)

// WithSupersample sets the overlay supersampling factor (minimum 1).
func WithSupersample(k int) RenderOption {
	return func(c *renderConfig) { c.supersample = k }
}

// WithTileCallback registers fn to run after each tile is placed.
func WithTileCallback(fn func(tiles.Tile)) RenderOption {
	return func(c *renderConfig) { c.onTile = fn }
}

// Render rasterizes the basemap and all layers.
func (m *Map) Render(ctx context.Context, src tiles.Source, opts ...RenderOption) (*image.RGBA, error) {
	if m.width <= 0 || m.height <= 0 {
		return nil, errors.Errorf("invalid map size %dx%d", m.width, m.height)
	}
	if int64(m.width)*int64(m.height) > maxOverlayPixels {
		return nil, errors.Errorf("map size %dx%d exceeds %d pixels", m.width, m.height, maxOverlayPixels)
	}
	cfg := renderConfig{supersample: DefaultSupersample}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	if err := m.drawBasemap(ctx, out, src, cfg.onTile); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.layers) > 0 {
		overlay := m.drawOverlay(supersample(cfg.supersample, m.width, m.height))
		draw.Draw(out, out.Bounds(), overlay, image.Point{}, draw.Over)
	}
	return out, nil
}

// TilesInView lists the tiles covering the viewport in row-major order, with
// X wrapped around the antimeridian. Rows outside the world are omitted.
func (m *Map) TilesInView() []TilePlacement {
	o := m.origin()
	n := 1 << m.zoom
	x0 := int(math.Floor(o[0] / tiles.Size))
	y0 := int(math.Floor(o[1] / tiles.Size))
	x1 := int(math.Floor((o[0] + float64(m.width) - 1) / tiles.Size))
	y1 := int(math.Floor((o[1] + float64(m.height) - 1) / tiles.Size))

	var out []TilePlacement
	for ty := y0; ty <= y1; ty++ {
		if ty < 0 || ty >= n {
			continue
		}
		for tx := x0; tx <= x1; tx++ {
			out = append(out, TilePlacement{
				Tile: tiles.Tile{Z: m.zoom, X: ((tx % n) + n) % n, Y: ty},
				At: image.Point{
					X: tx*tiles.Size - int(o[0]),
					Y: ty*tiles.Size - int(o[1]),
				},
			})
		}
	}
	return out
}

// TilePlacement is a tile and the output position of its top-left corner.
type TilePlacement struct {
	Tile tiles.Tile
	At   image.Point
}

func (m *Map) drawBasemap(ctx context.Context, dst *image.RGBA, src tiles.Source, onTile func(tiles.Tile)) error {
	bg := color.Color(color.White)
	if src != nil && src.Provider().Background != nil {
		bg = src.Provider().Background
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if src == nil {
		return nil
	}

	for _, tp := range m.TilesInView() {
		img, err := src.Tile(ctx, tp.Tile)
		if err != nil {
			return errors.Wrapf(err, "tile %s", tp.Tile)
		}
		if img != nil {
			r := image.Rect(0, 0, tiles.Size, tiles.Size).Add(tp.At)
			if b := img.Bounds(); b.Dx() == tiles.Size && b.Dy() == tiles.Size {
				draw.Draw(dst, r, img, b.Min, draw.Over)
			} else {
				draw.BiLinear.Scale(dst, r, img, b, draw.Over, nil)
			}
		}
		if onTile != nil {
			onTile(tp.Tile)
		}
	}
	return nil
}

func (m *Map) drawOverlay(k int) *image.RGBA {
	dc := gg.NewContext(m.width*k, m.height*k)
	c := &Canvas{dc: dc, m: m, scale: float64(k)}
	for _, l := range m.layers {
		l.Draw(c)
	}

	big, ok := dc.Image().(*image.RGBA)
	if !ok {
		big = image.NewRGBA(dc.Image().Bounds())
		draw.Draw(big, big.Bounds(), dc.Image(), image.Point{}, draw.Src)
	}
	if k == 1 {
		return big
	}
	small := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	draw.BiLinear.Scale(small, small.Bounds(), big, big.Bounds(), draw.Src, nil)
	return small
}

func supersample(k, w, h int) int {
	k = max(1, k)
	if limit := int(math.Sqrt(float64(maxOverlayPixels) / float64(w*h))); k > limit {
		k = max(1, limit)
	}
	return k
}
