// Package tiles fetches basemap tiles for static map renders.
//
// A [Provider] describes a slippy-map tile service by URL template. A
// [Fetcher] downloads tiles from it with retry and caching. Providers
// without a URL (see [None]) render a plain background and never touch the
// network.
package tiles

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/trafficmap/pkg/cache"
)

// Size is the edge length of a tile in pixels.
const Size = 256

// Tile addresses a tile by zoom and column/row.
type Tile struct {
	Z, X, Y int
}

func (t Tile) String() string { return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y) }

// Provider describes a tile service.
type Provider struct {
	Name       string
	URL        string // template with {s}, {z}, {x}, {y}; empty for offline
	Subdomains []string
	MaxZoom    int
	Background color.Color // painted under the tiles
}

// Built-in providers.
var (
	// Positron is CARTO's light basemap.
	Positron = Provider{
		Name:       "positron",
		URL:        "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Subdomains: []string{"a", "b", "c", "d"},
		MaxZoom:    20,
		Background: color.NRGBA{R: 0xfa, G: 0xfa, B: 0xf8, A: 0xff},
	}

	// OSM is the OpenStreetMap standard layer.
	OSM = Provider{
		Name:       "osm",
		URL:        "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		MaxZoom:    19,
		Background: color.NRGBA{R: 0xf2, G: 0xef, B: 0xe9, A: 0xff},
	}

	// None draws a white background without tiles.
	None = Provider{
		Name:       "none",
		MaxZoom:    20,
		Background: color.White,
	}
)

var builtin = map[string]Provider{
	Positron.Name: Positron,
	OSM.Name:      OSM,
	None.Name:     None,
}

// Lookup returns the built-in provider with the given name.
func Lookup(name string) (Provider, bool) {
	p, ok := builtin[name]
	return p, ok
}

// Names lists the built-in provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Custom returns a provider for a user-supplied URL template.
func Custom(urlTemplate string, maxZoom int, subdomains ...string) Provider {
	if maxZoom <= 0 {
		maxZoom = 19
	}
	if len(subdomains) == 0 && strings.Contains(urlTemplate, "{s}") {
		subdomains = []string{"a", "b", "c"}
	}
	return Provider{
		Name:       "custom-" + cache.Hash([]byte(urlTemplate))[:8],
		URL:        urlTemplate,
		Subdomains: subdomains,
		MaxZoom:    maxZoom,
		Background: color.White,
	}
}

// Offline reports whether the provider draws without fetching tiles.
func (p Provider) Offline() bool { return p.URL == "" }

// TileURL expands the URL template for t. The subdomain is picked from
// (x+y) mod len(subdomains) so a tile always maps to the same host.
func (p Provider) TileURL(t Tile) string {
	s := ""
	if n := len(p.Subdomains); n > 0 {
		i := (t.X + t.Y) % n
		if i < 0 {
			i += n
		}
		s = p.Subdomains[i]
	}
	return strings.NewReplacer(
		"{s}", s,
		"{z}", strconv.Itoa(t.Z),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
	).Replace(p.URL)
}
