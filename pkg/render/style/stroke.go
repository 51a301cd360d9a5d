package style

import "image/color"

// Stroke describes how a vector shape is outlined and filled.
// Widths and dash lengths are in output pixels; renderers multiply them by
// their supersampling factor.
type Stroke struct {
	Color       color.Color
	Weight      float64
	Opacity     float64
	Fill        color.Color // nil disables fill
	FillOpacity float64
	Dash        []float64
}

// Defaults follow the Leaflet path defaults the original maps were drawn with.
const (
	DefaultWeight      = 3.0
	DefaultOpacity     = 1.0
	DefaultFillOpacity = 0.2
	baseLineWeight     = 3.0
)

var (
	black = color.NRGBA{A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
)

// NodeStroke is the style of a node circle: black dashed outline with a
// translucent black fill.
func NodeStroke() Stroke {
	return Stroke{
		Color:       black,
		Weight:      DefaultWeight,
		Opacity:     DefaultOpacity,
		Fill:        black,
		FillOpacity: DefaultFillOpacity,
		Dash:        []float64{10, 10},
	}
}

// LinkStroke is the style of a link polyline for the given load and scale.
func LinkStroke(load *int, scale float64) Stroke {
	return Stroke{
		Color:   MustParseHex(LoadColor(load)),
		Weight:  baseLineWeight * scale,
		Opacity: DefaultOpacity,
	}
}

// ArrowStroke is the style of a direction marker.
func ArrowStroke() Stroke {
	return Stroke{
		Color:       red,
		Weight:      DefaultWeight,
		Opacity:     DefaultOpacity,
		Fill:        red,
		FillOpacity: DefaultFillOpacity,
	}
}

// ArrowRadius returns the circumradius of a direction marker. Like the
// original it is truncated to whole pixels.
func ArrowRadius(scale float64) float64 {
	return float64(int(scale))
}
