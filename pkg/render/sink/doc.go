// Package sink encodes rendered maps into output formats.
//
// [RenderPNG] encodes the raster, [RenderJSON] wraps PNG bytes in the
// `{"image": ...}` document, and [RenderGeoJSON] exports the drawn geometry
// as a FeatureCollection in EPSG:4326.
//
// The JSON wrapper stores the image as a string. [EncodingRepr] writes a
// byte-string literal such as `b'\x89PNG\r\n...'`, which is what earlier
// tooling produced and downstream consumers may parse. [EncodingBase64]
// writes standard base64 instead.
package sink
