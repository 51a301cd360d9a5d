package mapview

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"

	"github.com/matzehuels/trafficmap/pkg/render/style"
)

// Layer is a vector shape drawn over the basemap.
type Layer interface {
	Draw(c *Canvas)
}

// Canvas is the supersampled drawing surface handed to layers.
type Canvas struct {
	dc    *gg.Context
	m     *Map
	scale float64
}

// Point returns the canvas position of p.
func (c *Canvas) Point(p orb.Point) (float64, float64) {
	x, y := c.m.Pixel(p)
	return x * c.scale, y * c.scale
}

// Scale returns the canvas-to-output pixel ratio.
func (c *Canvas) Scale() float64 { return c.scale }

// Context exposes the underlying gg context.
func (c *Canvas) Context() *gg.Context { return c.dc }

// fillAndStroke paints the current path with s, filling first.
func (c *Canvas) fillAndStroke(s style.Stroke) {
	dc := c.dc
	if s.Fill != nil && s.FillOpacity > 0 {
		dc.SetColor(withOpacity(s.Fill, s.FillOpacity))
		dc.FillPreserve()
	}
	if s.Color == nil || s.Weight <= 0 {
		dc.ClearPath()
		return
	}
	dash := make([]float64, len(s.Dash))
	for i, d := range s.Dash {
		dash[i] = d * c.scale
	}
	dc.SetColor(withOpacity(s.Color, s.Opacity))
	dc.SetLineWidth(s.Weight * c.scale)
	dc.SetDash(dash...)
	dc.Stroke()
	dc.SetDash()
}

// Circle is a circle with a radius in output pixels.
type Circle struct {
	Center orb.Point
	Radius float64
	Stroke style.Stroke
}

func (l Circle) Draw(c *Canvas) {
	x, y := c.Point(l.Center)
	c.dc.NewSubPath()
	c.dc.DrawCircle(x, y, l.Radius*c.scale)
	c.fillAndStroke(l.Stroke)
}

// PolyLine is an open path with round caps and joins.
type PolyLine struct {
	Path   orb.LineString
	Stroke style.Stroke
}

func (l PolyLine) Draw(c *Canvas) {
	if len(l.Path) < 2 {
		return
	}
	dc := c.dc
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.NewSubPath()
	for _, p := range l.Path {
		dc.LineTo(c.Point(p))
	}
	// Open paths are never filled.
	s := l.Stroke
	s.Fill = nil
	c.fillAndStroke(s)
}

// RegularPolygon is a marker with Sides vertices on a circle of Radius output
// pixels. Vertex i sits at Rotation + i*360/Sides degrees, measured clockwise
// from the +x axis on screen, so vertex 0 points along Rotation.
type RegularPolygon struct {
	Center   orb.Point
	Sides    int
	Radius   float64
	Rotation float64
	Stroke   style.Stroke
}

// Vertices returns the marker corners in output pixels.
func (l RegularPolygon) Vertices(m *Map) []orb.Point {
	if l.Sides < 3 {
		return nil
	}
	cx, cy := m.Pixel(l.Center)
	pts := make([]orb.Point, l.Sides)
	for i := range pts {
		a := (l.Rotation + float64(i)*360/float64(l.Sides)) * math.Pi / 180
		pts[i] = orb.Point{cx + l.Radius*math.Cos(a), cy + l.Radius*math.Sin(a)}
	}
	return pts
}

func (l RegularPolygon) Draw(c *Canvas) {
	pts := l.Vertices(c.m)
	if pts == nil || l.Radius <= 0 {
		return
	}
	dc := c.dc
	dc.SetLineJoin(gg.LineJoinRound)
	dc.NewSubPath()
	for _, p := range pts {
		dc.LineTo(p[0]*c.scale, p[1]*c.scale)
	}
	dc.ClosePath()
	c.fillAndStroke(l.Stroke)
}

func withOpacity(c color.Color, opacity float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * math.Max(0, math.Min(1, opacity))))
	return n
}
