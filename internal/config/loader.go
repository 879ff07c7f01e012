// internal/config/loader.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Parse strips comments from a settings or token document and decodes its
// top-level array of objects.
func Parse(data []byte) ([]Record, error) {
	std, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errors.New("unexpected data after top-level array")}
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("top-level value must be an array, got %T", doc)}
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ParseError{Err: fmt.Errorf("element %d must be an object, got %T", i, item)}
		}
		records = append(records, Record(convertNumbers(obj).(map[string]any)))
	}
	return records, nil
}

// LoadFile reads and parses path. Parse failures carry the path.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := Parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return records, nil
}

// convertNumbers turns json.Number into int64 when the literal is integral
// and float64 otherwise.
func convertNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = convertNumbers(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = convertNumbers(inner)
		}
		return t
	default:
		return v
	}
}
