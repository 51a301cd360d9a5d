// Package style maps link loads to colors and holds the stroke styles used
// for nodes, links and arrowheads.
package style

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Bucket is a load severity tier.
type Bucket string

// Load buckets, lowest to highest.
const (
	BucketNoData   Bucket = "no_data"
	BucketLow      Bucket = "low"
	BucketMedium   Bucket = "medium"
	BucketHigh     Bucket = "high"
	BucketCritical Bucket = "critical"
)

// Bucket colors.
const (
	ColorNoData   = "#6c6c6c"
	ColorLow      = "#0CBE00"
	ColorMedium   = "#FFDD1C"
	ColorHigh     = "#E20000"
	ColorCritical = "#760000"
)

// Buckets lists every bucket in severity order.
var Buckets = []Bucket{BucketNoData, BucketLow, BucketMedium, BucketHigh, BucketCritical}

var bucketColors = map[Bucket]string{
	BucketNoData:   ColorNoData,
	BucketLow:      ColorLow,
	BucketMedium:   ColorMedium,
	BucketHigh:     ColorHigh,
	BucketCritical: ColorCritical,
}

// BucketFor classifies a load. A nil load has no data. Values outside the
// 0–9 range, negatives included, fall into the critical bucket.
func BucketFor(load *int) Bucket {
	if load == nil {
		return BucketNoData
	}
	switch l := *load; {
	case 0 <= l && l <= 2:
		return BucketLow
	case 3 <= l && l <= 6:
		return BucketMedium
	case 7 <= l && l <= 9:
		return BucketHigh
	}
	return BucketCritical
}

// Hex returns the bucket's hex color. Unknown buckets get the no-data color.
func (b Bucket) Hex() string {
	if c, ok := bucketColors[b]; ok {
		return c
	}
	return ColorNoData
}

// LoadColor returns the hex color for a load.
func LoadColor(load *int) string {
	return BucketFor(load).Hex()
}

// Scale returns the line scale for an image width: width/300, never below 1.
func Scale(width int) float64 {
	return max(1, float64(width)/300)
}

// ParseHex parses a #rrggbb or #rgb string into an opaque color.
func ParseHex(s string) (color.Color, error) {
	c, err := colorful.Hex(expandShortHex(s))
	if err != nil {
		return nil, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// MustParseHex is like ParseHex but panics on malformed input.
func MustParseHex(s string) color.Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func expandShortHex(s string) string {
	if len(s) != 4 || s[0] != '#' {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}
