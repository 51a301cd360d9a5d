// Package graph defines the input document for trafficmap renders.
//
// A document carries a network graph whose geometry is already computed in
// Web Mercator (EPSG:3857) meters, a list of per-link loads and the size of
// the image to produce:
//
//	{
//	  "graph": {
//	    "nodes": [{"geometry": {"center": [0, 0], "radius": 5}}],
//	    "links": [{"id": "a", "geometry": {"coordinates": [[0, 0], [1000, 1000]]}}]
//	  },
//	  "loads": [{"link_id": "a", "load": 5}],
//	  "image": {"width": 300, "height": 300}
//	}
//
// # Loads
//
// Loads reference links by id. They need not be unique or exhaustive: a link
// without an entry has no data, and when several entries name the same link
// the last one in input order wins. See [Document.LoadIndex].
//
// # Identifiers
//
// Ids may be JSON strings or numbers. They are compared by their canonical
// JSON text, so 7 and "7" are different ids. See [ID].
//
// All types are plain values; nothing in this package mutates a document
// after it is decoded.
package graph
