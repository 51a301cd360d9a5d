package io

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/trafficmap/pkg/errors"
	"github.com/matzehuels/trafficmap/pkg/graph"
)

// DefaultInput is the document read when no input is given.
const DefaultInput = "data.json"

// ReadDocument decodes and validates a document from r.
//
// The JSON is first checked against the document schema, so structural
// problems report their location; [graph.Document.Validate] then checks the
// values. Unknown fields are ignored. ReadDocument does not close r.
func ReadDocument(r io.Reader) (*graph.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document")
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
	}
	if err := validateSchema(raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid document: %s", schemaMessage(err))
	}

	var doc graph.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportDocument reads the document at path.
func ImportDocument(path string) (*graph.Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	doc, err := ReadDocument(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "read %s", path)
	}
	return doc, nil
}
