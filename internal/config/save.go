// internal/config/save.go
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SaveSettings rewrites path as a pretty-printed JSON array holding the
// exchange settings object, followed by the global object when it has any
// keys. Program-owned keys (leading underscore) are not written and booleans
// are stored as "true"/"false" strings, the shape older settings files use.
// An existing file keeps its permissions.
func SaveSettings(path string, s *Settings) error {
	if s == nil || s.Exchange == nil {
		return fmt.Errorf("no exchange settings to save")
	}

	objects := []Record{persistable(s.Exchange.Raw)}
	if s.Global != nil {
		if g := persistable(s.Global.Raw); len(g) > 0 {
			objects = append(objects, g)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, obj := range objects {
		body, err := json.MarshalIndent(obj, "    ", "    ")
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		buf.WriteString("    ")
		buf.Write(body)
		if i < len(objects)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")

	mode := fs.FileMode(0o600)
	info, err := os.Stat(path)
	switch {
	case err == nil:
		mode = info.Mode().Perm()
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func persistable(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		if strings.HasPrefix(k, "_") {
			continue
		}
		if b, ok := v.(bool); ok {
			v = fmt.Sprintf("%t", b)
		}
		out[k] = v
	}
	return out
}
