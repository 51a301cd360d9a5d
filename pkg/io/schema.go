package io

import (
	_ "embed"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed document.schema.json
var documentSchema string

const schemaURL = "file:///trafficmap/document.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, strings.NewReader(documentSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// validateSchema checks the decoded JSON value v against the document schema.
func validateSchema(v any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	return s.Validate(v)
}

// schemaMessage reduces a schema error to its first leaf, e.g.
// "/graph/nodes/0/geometry: missing properties: 'radius'".
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !stderrors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
