package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/trafficmap/pkg/errors"
	"github.com/matzehuels/trafficmap/pkg/graph"
)

// Output locations.
const (
	DefaultOutputDir = "result_data"
	PNGName          = "result.png"
	JSONName         = "result.json"
	GeoJSONName      = "result.geojson"
)

// Outputs are the encoded render artifacts. Nil fields are not written.
type Outputs struct {
	PNG     []byte
	JSON    []byte
	GeoJSON []byte
}

// WriteOutputs writes outs into dir and returns the paths written in order
// (png, json, geojson).
func WriteOutputs(dir string, outs Outputs) ([]string, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output dir %s", dir)
	}

	var written []string
	for _, f := range []struct {
		name string
		data []byte
	}{
		{PNGName, outs.PNG},
		{JSONName, outs.JSON},
		{GeoJSONName, outs.GeoJSON},
	} {
		if f.data == nil {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := writeFileAtomic(path, f.data); err != nil {
			return written, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

// WriteDocument encodes doc as indented JSON to w.
func WriteDocument(doc *graph.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportDocument writes doc to a JSON file at path.
func ExportDocument(doc *graph.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(doc, f)
}
