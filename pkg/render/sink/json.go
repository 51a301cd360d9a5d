package sink

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/matzehuels/trafficmap/pkg/errors"
)

// Encoding selects how image bytes are written into the JSON wrapper.
type Encoding string

const (
	EncodingRepr   Encoding = "repr"
	EncodingBase64 Encoding = "base64"
)

// Encodings lists the supported encodings.
var Encodings = []string{string(EncodingRepr), string(EncodingBase64)}

// ParseEncoding validates an encoding name. Empty means [EncodingRepr].
func ParseEncoding(s string) (Encoding, error) {
	if s == "" {
		return EncodingRepr, nil
	}
	if err := errors.ValidateChoice("image_encoding", s, Encodings...); err != nil {
		return "", err
	}
	return Encoding(s), nil
}

// ImageDocument is the JSON wrapper around an encoded image.
type ImageDocument struct {
	Image string `json:"image"`
}

// RenderJSON wraps data in an ImageDocument, indented by four spaces with no
// HTML escaping and no trailing newline.
func RenderJSON(data []byte, enc Encoding) ([]byte, error) {
	s, err := EncodeBytes(data, enc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	e := json.NewEncoder(&buf)
	e.SetEscapeHTML(false)
	e.SetIndent("", "    ")
	if err := e.Encode(ImageDocument{Image: s}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode image document")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeBytes renders data as a string in the given encoding.
func EncodeBytes(data []byte, enc Encoding) (string, error) {
	switch enc {
	case EncodingRepr, "":
		return Repr(data), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(data), nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported image encoding %q", enc)
}

// Repr returns the byte-string literal for data: b'...' unless data holds a
// single quote and no double quote. Printable ASCII is kept, backslash, the
// quote and \t \n \r are escaped, and every other byte becomes \xhh.
func Repr(data []byte) string {
	quote := byte('\'')
	if bytes.IndexByte(data, '\'') >= 0 && bytes.IndexByte(data, '"') < 0 {
		quote = '"'
	}

	const hex = "0123456789abcdef"
	var b strings.Builder
	b.Grow(len(data)*2 + 3)
	b.WriteByte('b')
	b.WriteByte(quote)
	for _, c := range data {
		switch {
		case c == quote || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c >= 0x7f:
			b.WriteString(`\x`)
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
