package mapview

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/trafficmap/pkg/geo"
	"github.com/matzehuels/trafficmap/pkg/graph"
	"github.com/matzehuels/trafficmap/pkg/render/style"
	"github.com/matzehuels/trafficmap/pkg/tiles"
)

func wgs(t *testing.T, x, y float64) orb.Point {
	t.Helper()
	p, err := geo.NewTransformer().ToWGS84(graph.Coordinate{x, y})
	if err != nil {
		t.Fatalf("ToWGS84: %v", err)
	}
	return p
}

func TestFitBounds(t *testing.T) {
	a, b := wgs(t, 0, 0), wgs(t, 1000, 1000)
	m := New(300, 300, orb.Point{}, WithMaxZoom(20))
	m.FitBounds(orb.LineString{a, b}.Bound())

	if got := m.Zoom(); got != 15 {
		t.Errorf("Zoom() = %d, want 15", got)
	}
	mid := wgs(t, 500, 500)
	if c := m.Center(); math.Abs(c[0]-mid[0]) > 1e-9 || math.Abs(c[1]-mid[1]) > 1e-9 {
		t.Errorf("Center() = %v, want %v", c, mid)
	}

	ax, ay := m.Pixel(a)
	bx, by := m.Pixel(b)
	for _, v := range []float64{ax, ay, bx, by} {
		if v < 0 || v > 300 {
			t.Fatalf("bounds corner outside viewport: a=(%.1f,%.1f) b=(%.1f,%.1f)", ax, ay, bx, by)
		}
	}
	if !(bx > ax && by < ay) {
		t.Errorf("north-east corner should be right of and above south-west: a=(%.1f,%.1f) b=(%.1f,%.1f)", ax, ay, bx, by)
	}
}

func TestFitBoundsDegenerate(t *testing.T) {
	p := wgs(t, 1000, 2000)
	m := New(300, 300, orb.Point{}, WithMaxZoom(17))
	m.FitBounds(orb.Bound{Min: p, Max: p})

	if got := m.Zoom(); got != 17 {
		t.Errorf("Zoom() = %d, want max zoom 17", got)
	}
	x, y := m.Pixel(p)
	if math.Abs(x-150) > 1 || math.Abs(y-150) > 1 {
		t.Errorf("Pixel(center) = (%.2f, %.2f), want about (150, 150)", x, y)
	}
}

func TestNewClampsZoom(t *testing.T) {
	if got := New(10, 10, orb.Point{}, WithZoom(25), WithMaxZoom(19)).Zoom(); got != 19 {
		t.Errorf("Zoom() = %d, want 19", got)
	}
	if got := New(10, 10, orb.Point{}, WithZoom(-3)).Zoom(); got != MinZoom {
		t.Errorf("Zoom() = %d, want %d", got, MinZoom)
	}
}

func TestTilesInViewWraps(t *testing.T) {
	m := New(300, 300, orb.Point{}, WithZoom(0))
	got := m.TilesInView()
	want := []TilePlacement{
		{Tile: tiles.Tile{Z: 0, X: 0, Y: 0}, At: image.Pt(-234, 22)},
		{Tile: tiles.Tile{Z: 0, X: 0, Y: 0}, At: image.Pt(22, 22)},
		{Tile: tiles.Tile{Z: 0, X: 0, Y: 0}, At: image.Pt(278, 22)},
	}
	if len(got) != len(want) {
		t.Fatalf("TilesInView() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TilesInView()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRegularPolygonVertices(t *testing.T) {
	m := New(100, 100, orb.Point{}, WithZoom(3))
	cx, cy := m.Pixel(orb.Point{})

	tests := []struct {
		rotation float64
		dx, dy   float64
	}{
		{0, 4, 0},
		{90, 0, 4},
		{180, -4, 0},
		{270, 0, -4},
	}
	for _, tt := range tests {
		v := RegularPolygon{Center: orb.Point{}, Sides: 3, Radius: 4, Rotation: tt.rotation}.Vertices(m)
		if len(v) != 3 {
			t.Fatalf("Vertices() len = %d, want 3", len(v))
		}
		if math.Abs(v[0][0]-cx-tt.dx) > 1e-9 || math.Abs(v[0][1]-cy-tt.dy) > 1e-9 {
			t.Errorf("rotation %v: tip = (%.3f, %.3f), want offset (%v, %v)", tt.rotation, v[0][0]-cx, v[0][1]-cy, tt.dx, tt.dy)
		}
	}
	if v := (RegularPolygon{Sides: 2, Radius: 1}).Vertices(m); v != nil {
		t.Errorf("Vertices() with 2 sides = %v, want nil", v)
	}
}

type solidSource struct {
	c     color.Color
	calls int
}

func (s *solidSource) Provider() tiles.Provider { return tiles.Provider{Name: "solid", MaxZoom: 20} }

func (s *solidSource) Tile(context.Context, tiles.Tile) (image.Image, error) {
	s.calls++
	img := image.NewRGBA(image.Rect(0, 0, tiles.Size, tiles.Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(s.c), image.Point{}, draw.Src)
	return img, nil
}

func TestRenderBasemap(t *testing.T) {
	src := &solidSource{c: color.RGBA{B: 0xff, A: 0xff}}
	m := New(64, 48, orb.Point{}, WithZoom(2))

	var placed int
	img, err := m.Render(context.Background(), src, WithTileCallback(func(tiles.Tile) { placed++ }))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 48) {
		t.Errorf("Bounds() = %v", img.Bounds())
	}
	if got := img.RGBAAt(10, 10); got != (color.RGBA{B: 0xff, A: 0xff}) {
		t.Errorf("pixel = %v, want blue", got)
	}
	if placed != src.calls || placed == 0 {
		t.Errorf("callback ran %d times for %d tiles", placed, src.calls)
	}
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := New(10, 10, orb.Point{})
	m.Add(Circle{Radius: 2, Stroke: style.NodeStroke()})
	if _, err := m.Render(ctx, tiles.Blank{P: tiles.None}); err == nil {
		t.Error("Render with canceled context should fail")
	}
}

func TestRenderInvalidSize(t *testing.T) {
	if _, err := New(0, 10, orb.Point{}).Render(context.Background(), tiles.Blank{P: tiles.None}); err == nil {
		t.Error("Render of empty map should fail")
	}
}

func TestRenderOversized(t *testing.T) {
	if _, err := New(1<<21, 1<<21, orb.Point{}).Render(context.Background(), tiles.Blank{P: tiles.None}); err == nil {
		t.Error("Render of oversized map should fail before allocating")
	}
}

func TestRenderTrafficScene(t *testing.T) {
	a, b := wgs(t, 0, 0), wgs(t, 1000, 1000)
	load := 5

	m := New(300, 300, orb.Point{}, WithMaxZoom(tiles.None.MaxZoom))
	m.FitBounds(orb.LineString{a, b}.Bound())
	m.Add(
		Circle{Center: a, Radius: 5, Stroke: style.NodeStroke()},
		Circle{Center: b, Radius: 5, Stroke: style.NodeStroke()},
		PolyLine{Path: orb.LineString{a, b}, Stroke: style.LinkStroke(&load, style.Scale(300))},
	)

	img, err := m.Render(context.Background(), tiles.Blank{P: tiles.None})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 300 {
		t.Fatalf("size = %v, want 300x300", img.Bounds().Size())
	}

	ax, ay := m.Pixel(a)
	bx, by := m.Pixel(b)
	mid := img.RGBAAt(int((ax+bx)/2), int((ay+by)/2))
	if !near(mid, color.RGBA{R: 0xff, G: 0xdd, B: 0x1c, A: 0xff}, 12) {
		t.Errorf("line midpoint = %v, want #FFDD1C", mid)
	}

	// Inside the first dash of the ring, clear of the line.
	ring := img.RGBAAt(int(ax+5*math.Cos(1)), int(ay+5*math.Sin(1)))
	if ring.R > 80 || ring.G > 80 || ring.B > 80 {
		t.Errorf("node ring = %v, want dark", ring)
	}

	if corner := img.RGBAAt(0, 0); corner != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("background = %v, want white", corner)
	}
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool { return math.Abs(float64(x)-float64(y)) <= float64(tol) }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B)
}

func TestSupersampleLimit(t *testing.T) {
	tests := []struct{ k, w, h, want int }{
		{5, 300, 300, 5},
		{0, 300, 300, 1},
		{5, 4000, 4000, 2},
		{5, 10000, 10000, 1},
	}
	for _, tt := range tests {
		if got := supersample(tt.k, tt.w, tt.h); got != tt.want {
			t.Errorf("supersample(%d, %d, %d) = %d, want %d", tt.k, tt.w, tt.h, got, tt.want)
		}
	}
}
