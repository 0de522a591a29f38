package form

import (
	"math"
	"strconv"
	"strings"

	"pricedash/domain/housing"
)

// Coerce converts raw field strings to their declared kinds.
//
// Optional fields with a blank value become nil. Integer fields become int64
// and float fields float64. Values that do not parse, and fields the schema
// does not know, are passed through unchanged so the backend can reject them.
func (s *Schema) Coerce(raw map[string]string) housing.Features {
	out := make(housing.Features, len(raw))
	for name, value := range raw {
		out[name] = s.CoerceValue(name, value)
	}
	return out
}

// CoerceValue converts one raw value.
func (s *Schema) CoerceValue(name, raw string) interface{} {
	f, ok := s.Field(name)
	if !ok {
		return raw
	}
	trimmed := strings.TrimSpace(raw)
	if f.Optional && trimmed == "" {
		return nil
	}

	switch f.Kind {
	case Integer:
		if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return v
		}
		// "1500.0" is still an integer value
		if v, ok := parseFinite(trimmed); ok && v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
		return raw
	case Float:
		if v, ok := parseFinite(trimmed); ok {
			return v
		}
		return raw
	default:
		return raw
	}
}

// Build merges the schema defaults under raw and coerces the result.
func (s *Schema) Build(raw map[string]string) housing.Features {
	merged := s.Defaults()
	for k, v := range raw {
		merged[k] = v
	}
	return s.Coerce(merged)
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatValue renders a backend value as a form field string.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case interface{ String() string }:
		return t.String()
	default:
		return ""
	}
}
