// Package io reads render input documents and writes render outputs.
//
// # Import
//
// Use [ImportDocument] to read a document from a file path, or
// [ReadDocument] to read from any io.Reader:
//
//	doc, err := io.ImportDocument("data.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both validate the document (see [graph.Document.Validate]). A missing file
// yields an [errors.ErrCodeFileNotFound] error and malformed JSON an
// [errors.ErrCodeInvalidInput] error.
//
// # Export
//
// [WriteOutputs] stores the rendered artifacts in an output directory,
// creating it if needed:
//
//	result_data/
//	    result.png
//	    result.json
//	    result.geojson   (only when requested)
//
// Each file is written to a temporary name and renamed into place, so readers
// never see a half-written output.
//
// [WriteDocument] and [ExportDocument] encode a document back to JSON.
//
// [graph.Document.Validate]: github.com/matzehuels/trafficmap/pkg/graph.Document.Validate
// [errors.ErrCodeFileNotFound]: github.com/matzehuels/trafficmap/pkg/errors.ErrCodeFileNotFound
// [errors.ErrCodeInvalidInput]: github.com/matzehuels/trafficmap/pkg/errors.ErrCodeInvalidInput
package io
