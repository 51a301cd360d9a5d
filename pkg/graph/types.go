package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// =============================================================================
// Document - Render Input
// =============================================================================

// Document is the top-level render input.
type Document struct {
	Graph Graph       `json:"graph"`
	Loads []LoadEntry `json:"loads"`
	Image ImageSize   `json:"image"`
}

// Graph holds the network in input order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// ImageSize is the output canvas size in pixels.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// =============================================================================
// Node, Link, LoadEntry
// =============================================================================

// Node is a drawn junction of the network.
type Node struct {
	ID       ID           `json:"id,omitempty"`
	Geometry NodeGeometry `json:"geometry"`
}

// NodeGeometry places a node on the map.
type NodeGeometry struct {
	Center Coordinate `json:"center"`
	Radius float64    `json:"radius"` // canvas pixels
}

// Link is a directed, drawn path between nodes.
type Link struct {
	ID       ID           `json:"id"`
	Geometry LinkGeometry `json:"geometry"`
}

// LinkGeometry is the link's path in traversal order.
type LinkGeometry struct {
	Coordinates []Coordinate `json:"coordinates"`
}

// LoadEntry assigns a load to a link. A nil Load means "no data".
type LoadEntry struct {
	LinkID ID   `json:"link_id"`
	Load   *int `json:"load"`
}

// UnmarshalJSON implements json.Unmarshaler. Integral numbers written with
// a fraction or exponent, e.g. 5.0 or 1e1, decode as integers.
func (e *LoadEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		LinkID ID              `json:"link_id"`
		Load   json.RawMessage `json:"load"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.LinkID, e.Load = raw.LinkID, nil
	lit := bytes.TrimSpace(raw.Load)
	if len(lit) == 0 || bytes.Equal(lit, []byte("null")) {
		return nil
	}
	n, err := parseLoad(json.Number(lit))
	if err != nil {
		return fmt.Errorf("link %s: %w", raw.LinkID, err)
	}
	e.Load = &n
	return nil
}

func parseLoad(num json.Number) (int, error) {
	if n, err := strconv.Atoi(num.String()); err == nil {
		return n, nil
	}
	v, err := num.Float64()
	if err != nil || v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, fmt.Errorf("load must be an integer, got %s", num)
	}
	return int(v), nil
}

// =============================================================================
// Coordinate
// =============================================================================

// Coordinate is an (x, y) pair in EPSG:3857 meters.
// It decodes from a JSON array of two or three numbers; a third (z) value
// is accepted and dropped.
type Coordinate [2]float64

// X returns the easting.
func (c Coordinate) X() float64 { return c[0] }

// Y returns the northing.
func (c Coordinate) Y() float64 { return c[1] }

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	if len(v) < 2 || len(v) > 3 {
		return fmt.Errorf("coordinate: want 2 or 3 values, got %d", len(v))
	}
	c[0], c[1] = v[0], v[1]
	return nil
}

// =============================================================================
// ID
// =============================================================================

// ID is a node or link identifier holding the canonical JSON text of the
// value, e.g. `"a12"` or `7`. Numbers are normalized, so 7, 7.0 and 7e0
// are the same id. The zero value means "absent".
type ID string

// StringID returns the ID for a JSON string value.
func StringID(s string) ID {
	b, _ := json.Marshal(s)
	return ID(b)
}

// NumberID returns the ID for a JSON integer value.
func NumberID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// String returns the id for display: strings unquoted, numbers as written.
func (id ID) String() string {
	var s string
	if err := json.Unmarshal([]byte(id), &s); err == nil {
		return s
	}
	return string(id)
}

// IsZero reports whether the id was absent or null.
func (id ID) IsZero() bool { return id == "" || id == "null" }

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case string, bool:
	case float64:
		*id = numberID(data, v)
		return nil
	default:
		return fmt.Errorf("id must be a string or number, got %s", data)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*id = ID(buf.String())
	return nil
}

// numberID canonicalizes a JSON number. Integers keep full int64 precision.
func numberID(lit []byte, v float64) ID {
	if n, err := strconv.ParseInt(string(lit), 10, 64); err == nil {
		return NumberID(n)
	}
	if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
		return NumberID(int64(v))
	}
	return ID(strconv.FormatFloat(v, 'g', -1, 64))
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return []byte(id), nil
}
