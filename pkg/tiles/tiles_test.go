package tiles

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/trafficmap/pkg/cache"
	"github.com/matzehuels/trafficmap/pkg/errors"
)

func tilePNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestTileURL(t *testing.T) {
	tests := []struct {
		tile Tile
		want string
	}{
		{Tile{15, 16384, 16383}, "https://d.basemaps.cartocdn.com/light_all/15/16384/16383.png"},
		{Tile{1, 0, 0}, "https://a.basemaps.cartocdn.com/light_all/1/0/0.png"},
		{Tile{1, 1, 0}, "https://b.basemaps.cartocdn.com/light_all/1/1/0.png"},
	}
	for _, tt := range tests {
		if got := Positron.TileURL(tt.tile); got != tt.want {
			t.Errorf("TileURL(%v) = %s, want %s", tt.tile, got, tt.want)
		}
	}

	if got := OSM.TileURL(Tile{2, 1, 3}); got != "https://tile.openstreetmap.org/2/1/3.png" {
		t.Errorf("OSM TileURL = %s", got)
	}
}

func TestResolve(t *testing.T) {
	p, err := Resolve("", "", 0)
	if err != nil || p.Name != Positron.Name {
		t.Errorf("Resolve(default) = %v, %v; want positron", p.Name, err)
	}

	p, err = Resolve("osm", "", 12)
	if err != nil || p.MaxZoom != 12 {
		t.Errorf("Resolve(osm, maxZoom 12) = %v, %v", p.MaxZoom, err)
	}

	p, err = Resolve("", "https://{s}.tiles.example/{z}/{x}/{y}.png", 0)
	if err != nil {
		t.Fatalf("Resolve(custom) error: %v", err)
	}
	if !strings.HasPrefix(p.Name, "custom-") || len(p.Subdomains) != 3 {
		t.Errorf("custom provider = %+v", p)
	}

	if _, err := Resolve("satellite", "", 0); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Resolve(unknown) error = %v, want INVALID_CONFIG", err)
	}
	if _, err := Resolve("", "https://tiles.example/{z}.png", 0); err == nil {
		t.Error("Resolve with incomplete template should fail")
	}
}

func TestNewSourceOffline(t *testing.T) {
	s := NewSource(None)
	if _, ok := s.(Blank); !ok {
		t.Fatalf("NewSource(None) = %T, want Blank", s)
	}
	img, err := s.Tile(context.Background(), Tile{1, 0, 0})
	if img != nil || err != nil {
		t.Errorf("Blank.Tile = %v, %v; want nil, nil", img, err)
	}
}

func TestFetcherFetchesAndCaches(t *testing.T) {
	body := tilePNG(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var hits atomic.Int32
	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		ua.Store(r.UserAgent())
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	c, _ := cache.NewFileCache(t.TempDir())
	f := NewFetcher(Custom(srv.URL+"/{z}/{x}/{y}.png", 18),
		WithCache(c, time.Hour), WithUserAgent("trafficmap-test"))

	for i := 0; i < 2; i++ {
		img, err := f.Tile(context.Background(), Tile{3, 4, 5})
		if err != nil {
			t.Fatalf("Tile() error: %v", err)
		}
		if img.Bounds().Dx() != Size {
			t.Errorf("tile width = %d, want %d", img.Bounds().Dx(), Size)
		}
		r, g, b, _ := img.At(0, 0).RGBA()
		if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
			t.Errorf("tile color = %d,%d,%d", r>>8, g>>8, b>>8)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1 (second read is cached)", n)
	}
	if got := ua.Load(); got != "trafficmap-test" {
		t.Errorf("User-Agent = %v", got)
	}
}

func TestFetcherNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewFetcher(Custom(srv.URL+"/{z}/{x}/{y}.png", 18))
	img, err := f.Tile(context.Background(), Tile{1, 0, 0})
	if img != nil || err != nil {
		t.Errorf("Tile() = %v, %v; want nil, nil for 404", img, err)
	}
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	body := tilePNG(t, color.White)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(Custom(srv.URL+"/{z}/{x}/{y}.png", 18), WithRetry(3, time.Millisecond))
	if _, err := f.Tile(context.Background(), Tile{1, 0, 0}); err != nil {
		t.Fatalf("Tile() error: %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

func TestFetcherPermanentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFetcher(Custom(srv.URL+"/{z}/{x}/{y}.png", 18), WithRetry(3, time.Millisecond))
	_, err := f.Tile(context.Background(), Tile{1, 0, 0})
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Tile() error = %v, want NETWORK_ERROR", err)
	}
}

func TestFetcherRateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewFetcher(Custom(srv.URL+"/{z}/{x}/{y}.png", 18), WithRetry(2, time.Millisecond))
	_, err := f.Tile(context.Background(), Tile{1, 0, 0})
	if !errors.Is(err, errors.ErrCodeRateLimited) {
		t.Fatalf("Tile() error = %v, want RATE_LIMITED", err)
	}
	if !strings.Contains(err.Error(), "retry after 30 seconds") {
		t.Errorf("error = %v, want the Retry-After hint", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

func TestFetcherTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	f := NewFetcher(Custom(srv.URL+"/{z}/{x}/{y}.png", 18),
		WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
		WithRetry(1, time.Millisecond))
	if _, err := f.Tile(context.Background(), Tile{1, 0, 0}); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("Tile() error = %v, want TIMEOUT", err)
	}
}

func TestFetcherDropsCorruptCacheEntry(t *testing.T) {
	body := tilePNG(t, color.White)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	ctx := context.Background()
	p := Custom(srv.URL+"/{z}/{x}/{y}.png", 18)
	c, _ := cache.NewFileCache(t.TempDir())
	key := cache.NewDefaultKeyer().TileKey(p.Name, 1, 0, 0)
	if err := c.Set(ctx, key, []byte("garbage"), time.Hour); err != nil {
		t.Fatal(err)
	}

	f := NewFetcher(p, WithCache(c, time.Hour))
	if img, err := f.Tile(ctx, Tile{1, 0, 0}); err != nil || img == nil {
		t.Fatalf("Tile() = %v, %v", img, err)
	}
	data, _, _ := c.Get(ctx, key)
	if !bytes.Equal(data, body) {
		t.Error("cache should hold the refetched tile")
	}
}
