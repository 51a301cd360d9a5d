package graph

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/trafficmap/pkg/errors"
)

func intp(v int) *int { return &v }

const sampleDoc = `{
  "graph": {
    "nodes": [
      {"geometry": {"center": [0, 0], "radius": 5}},
      {"geometry": {"center": [1000, 1000], "radius": 5}}
    ],
    "links": [
      {"id": "a", "geometry": {"coordinates": [[0, 0], [1000, 1000]]}},
      {"id": 7, "geometry": {"coordinates": [[1000, 1000], [0, 0, 12]]}}
    ]
  },
  "loads": [{"link_id": "a", "load": 5}, {"link_id": 7, "load": null}],
  "image": {"width": 300, "height": 300}
}`

func decode(t *testing.T, s string) *Document {
	t.Helper()
	var d Document
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	return &d
}

func TestDocumentDecode(t *testing.T) {
	d := decode(t, sampleDoc)

	if d.NodeCount() != 2 || d.LinkCount() != 2 {
		t.Fatalf("got %d nodes, %d links; want 2, 2", d.NodeCount(), d.LinkCount())
	}
	if d.Image.Width != 300 || d.Image.Height != 300 {
		t.Errorf("image = %+v, want 300x300", d.Image)
	}
	if got := d.Graph.Links[1].Geometry.Coordinates[1]; got != (Coordinate{0, 0}) {
		t.Errorf("z value should be dropped, got %v", got)
	}
	if d.Graph.Links[0].ID != StringID("a") {
		t.Errorf("link 0 id = %q, want %q", d.Graph.Links[0].ID, StringID("a"))
	}
	if d.Graph.Links[1].ID != NumberID(7) {
		t.Errorf("link 1 id = %q, want %q", d.Graph.Links[1].ID, NumberID(7))
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestCoordinateRejectsShortArrays(t *testing.T) {
	var c Coordinate
	if err := json.Unmarshal([]byte(`[1]`), &c); err == nil {
		t.Error("expected error for single-value coordinate")
	}
	if err := json.Unmarshal([]byte(`[1, 2, 3, 4]`), &c); err == nil {
		t.Error("expected error for four-value coordinate")
	}
}

func TestIDStringAndNumberDistinct(t *testing.T) {
	if StringID("7") == NumberID(7) {
		t.Error(`"7" and 7 should be distinct ids`)
	}
	if got := StringID("7").String(); got != "7" {
		t.Errorf("String() = %q, want %q", got, "7")
	}
	var id ID
	if err := json.Unmarshal([]byte(`{"a":1}`), &id); err == nil {
		t.Error("object ids should be rejected")
	}
	if err := json.Unmarshal([]byte(`null`), &id); err != nil || !id.IsZero() {
		t.Errorf("null id should decode to zero, got %q (%v)", id, err)
	}
}

func TestValidateLargestImage(t *testing.T) {
	d := decode(t, sampleDoc)
	d.Image.Width, d.Image.Height = MaxImageSide, MaxImagePixels/MaxImageSide
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() error at the size limit: %v", err)
	}
}

func TestLoadEntryDecode(t *testing.T) {
	tests := []struct {
		input string
		want  *int
	}{
		{`{"link_id": "a", "load": 5}`, intp(5)},
		{`{"link_id": "a", "load": 5.0}`, intp(5)},
		{`{"link_id": "a", "load": 1e1}`, intp(10)},
		{`{"link_id": "a", "load": -3}`, intp(-3)},
		{`{"link_id": "a", "load": null}`, nil},
		{`{"link_id": "a"}`, nil},
	}
	for _, tt := range tests {
		var e LoadEntry
		if err := json.Unmarshal([]byte(tt.input), &e); err != nil {
			t.Errorf("%s: error: %v", tt.input, err)
			continue
		}
		if e.LinkID != StringID("a") {
			t.Errorf("%s: link id = %q", tt.input, e.LinkID)
		}
		switch {
		case tt.want == nil && e.Load != nil:
			t.Errorf("%s: load = %d, want nil", tt.input, *e.Load)
		case tt.want != nil && (e.Load == nil || *e.Load != *tt.want):
			t.Errorf("%s: load = %v, want %d", tt.input, e.Load, *tt.want)
		}
	}
}

func TestLoadEntryRejectsNonInteger(t *testing.T) {
	for _, input := range []string{
		`{"link_id": "a", "load": 5.5}`,
		`{"link_id": "a", "load": "5"}`,
		`{"link_id": "a", "load": true}`,
	} {
		var e LoadEntry
		err := json.Unmarshal([]byte(input), &e)
		if err == nil {
			t.Errorf("%s: expected error", input)
			continue
		}
		if !strings.Contains(err.Error(), "load must be an integer") {
			t.Errorf("%s: error = %q", input, err)
		}
	}
}

func TestNumericIDsNormalized(t *testing.T) {
	tests := map[string]ID{
		`7`:                 NumberID(7),
		`7.0`:               NumberID(7),
		`7e0`:               NumberID(7),
		`-0`:                NumberID(0),
		`1.5`:               ID("1.5"),
		`12345678901234567`: NumberID(12345678901234567),
	}
	for input, want := range tests {
		var id ID
		if err := json.Unmarshal([]byte(input), &id); err != nil {
			t.Fatalf("%s: %v", input, err)
		}
		if id != want {
			t.Errorf("%s: id = %q, want %q", input, id, want)
		}
	}

	d := &Document{Loads: []LoadEntry{{LinkID: NumberID(7), Load: intp(4)}}}
	var link Link
	if err := json.Unmarshal([]byte(`{"id": 7.0, "geometry": {"coordinates": []}}`), &link); err != nil {
		t.Fatal(err)
	}
	if got := d.LoadIndex().Lookup(link.ID); got == nil || *got != 4 {
		t.Errorf("load for id 7.0 = %v, want 4", got)
	}
}

func TestLoadIndexLastWins(t *testing.T) {
	d := &Document{Loads: []LoadEntry{
		{LinkID: StringID("a"), Load: intp(1)},
		{LinkID: StringID("b"), Load: intp(4)},
		{LinkID: StringID("a"), Load: intp(8)},
		{LinkID: StringID("b"), Load: nil},
	}}
	idx := d.LoadIndex()

	if got := idx.Lookup(StringID("a")); got == nil || *got != 8 {
		t.Errorf("a = %v, want 8", got)
	}
	if got := idx.Lookup(StringID("b")); got != nil {
		t.Errorf("b = %v, want nil (trailing null wins)", *got)
	}
	if got := idx.Lookup(StringID("missing")); got != nil {
		t.Errorf("missing = %v, want nil", *got)
	}
}

func TestMeanCenter(t *testing.T) {
	d := decode(t, sampleDoc)
	c, ok := d.MeanCenter()
	if !ok {
		t.Fatal("MeanCenter() returned false")
	}
	if c != (Coordinate{500, 500}) {
		t.Errorf("MeanCenter() = %v, want [500 500]", c)
	}

	if _, ok := (&Document{}).MeanCenter(); ok {
		t.Error("MeanCenter() on empty document should return false")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Document { return decode(t, sampleDoc) }

	tests := []struct {
		name   string
		modify func(*Document)
		code   errors.Code
	}{
		{"zero width", func(d *Document) { d.Image.Width = 0 }, errors.ErrCodeInvalidInput},
		{"negative height", func(d *Document) { d.Image.Height = -1 }, errors.ErrCodeInvalidInput},
		{"width over limit", func(d *Document) { d.Image.Width = MaxImageSide + 1 }, errors.ErrCodeInvalidInput},
		{"huge image", func(d *Document) { d.Image.Width, d.Image.Height = 1<<21, 1<<21 }, errors.ErrCodeInvalidInput},
		{"too many pixels", func(d *Document) { d.Image.Width, d.Image.Height = MaxImageSide, MaxImageSide }, errors.ErrCodeInvalidInput},
		{"no nodes", func(d *Document) { d.Graph.Nodes = nil }, errors.ErrCodeInvalidInput},
		{"negative radius", func(d *Document) { d.Graph.Nodes[0].Geometry.Radius = -1 }, errors.ErrCodeInvalidGeometry},
		{"nan center", func(d *Document) { d.Graph.Nodes[1].Geometry.Center[0] = math.NaN() }, errors.ErrCodeInvalidGeometry},
		{"short link", func(d *Document) {
			d.Graph.Links[0].Geometry.Coordinates = d.Graph.Links[0].Geometry.Coordinates[:1]
		}, errors.ErrCodeInvalidGeometry},
		{"inf link point", func(d *Document) {
			d.Graph.Links[1].Geometry.Coordinates[0][1] = math.Inf(1)
		}, errors.ErrCodeInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.modify(d)
			err := d.Validate()
			if err == nil {
				t.Fatal("Validate() returned nil")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}
