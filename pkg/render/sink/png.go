package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// RenderPNG encodes img as PNG.
func RenderPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes PNG bytes.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}
