package mapview

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/matzehuels/trafficmap/pkg/geo"
	"github.com/matzehuels/trafficmap/pkg/tiles"
)

// Zoom limits.
const (
	DefaultZoom    = 10
	DefaultMaxZoom = 18
	MinZoom        = 0
)

// Half the Web Mercator world width in meters.
const originShift = math.Pi * 6378137

// Map is a static viewport with vector layers.
type Map struct {
	width, height int
	center        orb.Point
	zoom          int
	maxZoom       int
	transformer   geo.Transformer
	layers        []Layer
}

// Option configures a Map.
type Option func(*Map)

// WithZoom sets the initial zoom.
func WithZoom(z int) Option {
	return func(m *Map) { m.zoom = z }
}

// WithMaxZoom caps the zoom FitBounds may choose, typically the tile
// provider's max zoom.
func WithMaxZoom(z int) Option {
	return func(m *Map) { m.maxZoom = z }
}

// New returns a width×height map centered on center ([lon, lat]).
func New(width, height int, center orb.Point, opts ...Option) *Map {
	m := &Map{
		width:       width,
		height:      height,
		center:      center,
		zoom:        DefaultZoom,
		maxZoom:     DefaultMaxZoom,
		transformer: geo.NewTransformer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.zoom = m.clampZoom(m.zoom)
	return m
}

// Size returns the output size in pixels.
func (m *Map) Size() (int, int) { return m.width, m.height }

// Center returns the view center.
func (m *Map) Center() orb.Point { return m.center }

// Zoom returns the view zoom.
func (m *Map) Zoom() int { return m.zoom }

// Layers returns the layers in draw order.
func (m *Map) Layers() []Layer { return m.layers }

// Add appends layers, drawn after those already added.
func (m *Map) Add(layers ...Layer) {
	m.layers = append(m.layers, layers...)
}

// FitBounds picks the largest zoom at which b fits inside the viewport and
// centers the view on b. Degenerate bounds (a single point) get the max
// zoom.
func (m *Map) FitBounds(b orb.Bound) {
	sw := m.world(b.Min, 0)
	ne := m.world(b.Max, 0)
	dx, dy := math.Abs(ne[0]-sw[0]), math.Abs(ne[1]-sw[1])

	scale := math.Inf(1)
	if dx > 0 {
		scale = float64(m.width) / dx
	}
	if dy > 0 {
		scale = math.Min(scale, float64(m.height)/dy)
	}
	zoom := m.maxZoom
	if !math.IsInf(scale, 1) {
		zoom = m.clampZoom(int(math.Floor(math.Log2(scale))))
	}

	mid := orb.Point{(sw[0] + ne[0]) / 2, (sw[1] + ne[1]) / 2}
	m.zoom = zoom
	m.center = m.unworld(mid, 0)
}

// Pixel returns the output pixel position of p.
func (m *Map) Pixel(p orb.Point) (float64, float64) {
	w := m.world(p, m.zoom)
	o := m.origin()
	return w[0] - o[0], w[1] - o[1]
}

// origin is the world pixel at the viewport's top-left corner, rounded.
func (m *Map) origin() orb.Point {
	c := m.world(m.center, m.zoom)
	return orb.Point{
		math.Round(c[0] - float64(m.width)/2),
		math.Round(c[1] - float64(m.height)/2),
	}
}

// world converts [lon, lat] to world pixels at zoom z.
func (m *Map) world(p orb.Point, z int) orb.Point {
	merc := m.transformer.Mercator(p)
	size := worldSize(z)
	return orb.Point{
		(merc[0] + originShift) / (2 * originShift) * size,
		(originShift - merc[1]) / (2 * originShift) * size,
	}
}

// unworld converts world pixels at zoom z to [lon, lat].
func (m *Map) unworld(w orb.Point, z int) orb.Point {
	size := worldSize(z)
	x := w[0]/size*2*originShift - originShift
	y := originShift - w[1]/size*2*originShift
	p, _ := m.transformer.ToWGS84([2]float64{x, y})
	return p
}

func (m *Map) clampZoom(z int) int {
	return max(MinZoom, min(z, m.maxZoom))
}

func worldSize(z int) float64 {
	return tiles.Size * math.Exp2(float64(z))
}
