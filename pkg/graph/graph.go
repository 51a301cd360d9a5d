package graph

import (
	"math"
	"strconv"

	"github.com/matzehuels/trafficmap/pkg/errors"
)

// Canvas limits. Larger images are rejected before any pixel buffer is
// allocated.
const (
	MaxImageSide   = 8192
	MaxImagePixels = 16 << 20
)

// LoadIndex maps link ids to their effective load.
type LoadIndex map[ID]*int

// LoadIndex builds the link id → load lookup. Entries are applied in input
// order, so the last entry for a link wins, including a trailing null.
func (d *Document) LoadIndex() LoadIndex {
	idx := make(LoadIndex, len(d.Loads))
	for _, l := range d.Loads {
		idx[l.LinkID] = l.Load
	}
	return idx
}

// Lookup returns the load for id, or nil when the link has no data.
func (idx LoadIndex) Lookup(id ID) *int {
	return idx[id]
}

// NodeCenters returns node centers in input order.
func (d *Document) NodeCenters() []Coordinate {
	out := make([]Coordinate, len(d.Graph.Nodes))
	for i, n := range d.Graph.Nodes {
		out[i] = n.Geometry.Center
	}
	return out
}

// MeanCenter returns the arithmetic mean of all node centers.
// It returns false when the document has no nodes.
func (d *Document) MeanCenter() (Coordinate, bool) {
	n := len(d.Graph.Nodes)
	if n == 0 {
		return Coordinate{}, false
	}
	var sx, sy float64
	for _, node := range d.Graph.Nodes {
		sx += node.Geometry.Center.X()
		sy += node.Geometry.Center.Y()
	}
	return Coordinate{sx / float64(n), sy / float64(n)}, true
}

// NodeCount returns the number of nodes.
func (d *Document) NodeCount() int { return len(d.Graph.Nodes) }

// LinkCount returns the number of links.
func (d *Document) LinkCount() int { return len(d.Graph.Links) }

// Validate checks the document for values the renderer cannot draw.
// Unknown link ids in loads and links without loads are not errors.
func (d *Document) Validate() error {
	if d.Image.Width <= 0 || d.Image.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"image size must be positive, got %dx%d", d.Image.Width, d.Image.Height)
	}
	if d.Image.Width > MaxImageSide || d.Image.Height > MaxImageSide ||
		d.Image.Width*d.Image.Height > MaxImagePixels {
		return errors.New(errors.ErrCodeInvalidInput,
			"image size %dx%d exceeds limit of %d pixels per side or %d pixels total",
			d.Image.Width, d.Image.Height, MaxImageSide, MaxImagePixels)
	}
	if len(d.Graph.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "graph has no nodes")
	}
	for i, n := range d.Graph.Nodes {
		if !finite(n.Geometry.Center) {
			return errors.New(errors.ErrCodeInvalidGeometry, "node %d: center is not finite", i)
		}
		if n.Geometry.Radius < 0 || math.IsNaN(n.Geometry.Radius) || math.IsInf(n.Geometry.Radius, 0) {
			return errors.New(errors.ErrCodeInvalidGeometry, "node %d: invalid radius %v", i, n.Geometry.Radius)
		}
	}
	for i, l := range d.Graph.Links {
		if len(l.Geometry.Coordinates) < 2 {
			return errors.New(errors.ErrCodeInvalidGeometry,
				"link %s: need at least 2 coordinates, got %d", linkName(i, l), len(l.Geometry.Coordinates))
		}
		for _, c := range l.Geometry.Coordinates {
			if !finite(c) {
				return errors.New(errors.ErrCodeInvalidGeometry, "link %s: coordinate is not finite", linkName(i, l))
			}
		}
	}
	return nil
}

func linkName(i int, l Link) string {
	if l.ID.IsZero() {
		return "#" + strconv.Itoa(i)
	}
	return l.ID.String()
}

func finite(c Coordinate) bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
