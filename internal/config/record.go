// internal/config/record.go
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Record is one parsed object of a settings or token file. Values are
// bool, string, int64, float64, nil, []any or map[string]any.
type Record map[string]any

var (
	decimalPattern = regexp.MustCompile(`^\d*\.\d+$`)
	integerPattern = regexp.MustCompile(`^\d+$`)
)

// Has reports whether key is present, regardless of its value.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// String returns the value of key rendered as a string, or "" when absent.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// Clone returns a deep copy so nested tables are never shared between
// records built from the same source.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Record:
		return map[string]any(t.Clone())
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}

// NormalizeBool converts a boolean-like value ("True", "false", true, 1)
// into a bool.
func NormalizeBool(v any) (bool, error) {
	if s, ok := v.(string); ok {
		v = strings.ToLower(strings.TrimSpace(s))
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("not a boolean: %w", err)
	}
	return b, nil
}

// CoerceValue converts pure-decimal strings to float64 and pure-integer
// strings to int64. Every other value is returned unchanged.
func CoerceValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch {
	case decimalPattern.MatchString(s):
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case integerPattern.MatchString(s):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return v
}

// CoerceStrings runs CoerceValue over every top-level value.
func (r Record) CoerceStrings() {
	for k, v := range r {
		r[k] = CoerceValue(v)
	}
}
